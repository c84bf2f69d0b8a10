package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Names follow the "charx_<action>" pattern so whole
// tool families can be disabled by type.

var inspectToolDef = mcp.NewTool("charx_inspect",
	mcp.WithDescription("Summarize a .charx archive: card identity, module presence, asset counts by category, metadata record ids, and any entries excluded by the size ceiling."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the .charx archive. Must be directly inside an allowed directory."),
	),
	mcp.WithBoolean("worker",
		mcp.Description("Run the parse on a supervised worker and report its job id."),
	),
)

var cardToolDef = mcp.NewTool("charx_card",
	mcp.WithDescription("Return the full normalized character card from a .charx archive."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the .charx archive."),
	),
)

var assetsToolDef = mcp.NewTool("charx_assets",
	mcp.WithDescription("List the assets embedded in a .charx archive with their category, MIME type, and size. Payload bytes are never returned."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the .charx archive."),
	),
	mcp.WithString("category",
		mcp.Description("Restrict the listing to one category: emotions, icons, backgrounds, or other."),
	),
)

var extractToolDef = mcp.NewTool("charx_extract",
	mcp.WithDescription("Write asset payloads from a .charx archive to files on disk. Archive paths are flattened to single filenames inside the destination directory."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the .charx archive."),
	),
	mcp.WithString("dir",
		mcp.Description("Destination directory. Defaults to the exports directory. Must be an allowed directory."),
	),
	mcp.WithString("category",
		mcp.Description("Extract only assets in this category. Mutually exclusive with asset."),
	),
	mcp.WithString("asset",
		mcp.Description("Extract a single asset by its full archive path, e.g. assets/icon/main.png. Mutually exclusive with category."),
	),
)

var moduleToolDef = mcp.NewTool("charx_module",
	mcp.WithDescription("Report the embedded module of a .charx archive: name, entry counts, and capability flags. A missing or undecodable module is reported as absent, not as an error."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the .charx archive."),
	),
	mcp.WithBoolean("include_script",
		mcp.Description("Include the module's script body in the response."),
	),
)

var lorebookToolDef = mcp.NewTool("charx_lorebook",
	mcp.WithDescription("Return the lorebook embedded in the archive's card, when the card carries one."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the .charx archive."),
	),
)

var metaToolDef = mcp.NewTool("charx_meta",
	mcp.WithDescription("Return the archive's x_meta records, either all of them or a single record by id."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the .charx archive."),
	),
	mcp.WithString("id",
		mcp.Description("Return only the record with this id."),
	),
)

var packToolDef = mcp.NewTool("charx_pack",
	mcp.WithDescription("Compose a .charx archive from files on disk: a card JSON file, an optional module file, an optional assets directory, and an optional directory of <id>.json metadata records."),
	mcp.WithString("card",
		mcp.Required(),
		mcp.Description("Path to the card JSON file."),
	),
	mcp.WithString("module",
		mcp.Description("Path to a .risum module file."),
	),
	mcp.WithString("assets_dir",
		mcp.Description("Directory whose files become the archive's assets, keyed by relative path."),
	),
	mcp.WithString("meta_dir",
		mcp.Description("Directory of top-level <id>.json metadata records."),
	),
	mcp.WithString("out",
		mcp.Description("Output path for the archive. Defaults to <exports>/<name>.charx."),
	),
)

var sheetToolDef = mcp.NewTool("charx_sheet",
	mcp.WithDescription("Render a self-contained HTML character sheet for a .charx archive and write it to a file."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the .charx archive."),
	),
	mcp.WithString("out",
		mcp.Description("Output path for the HTML file. Defaults to <exports>/<name>-sheet.html."),
	),
)
