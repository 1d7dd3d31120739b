package tools

var (
	formatsJSONCSV     = []string{"json", "csv"}
	formatsJSONCSVTree = []string{"json", "csv", "tree"}
)

func tenant() Param {
	return Param{Name: "tenant", Kind: KindString, Flag: "-t", Description: "Tenant ID or alias."}
}

func headers() Param {
	return Param{Name: "headers", Kind: KindBool, Flag: "--headers", Description: "Include headers in output."}
}

func pretty() Param {
	return Param{Name: "pretty", Kind: KindBool, Flag: "--pretty", Description: "Pretty output."}
}

func metadata() Param {
	return Param{Name: "metadata", Kind: KindBool, Flag: "--metadata", Description: "Include metadata in output."}
}

func format(values []string) Param {
	return Param{Name: "format", Kind: KindString, Flag: "-f", Enum: values, Description: "Output format."}
}

func uuidAndPath() []Param {
	return []Param{
		{Name: "uuid", Kind: KindString, Flag: "--uuid", Description: "Resource UUID."},
		{Name: "path", Kind: KindString, Flag: "--path", Description: "Resource path, e.g. /Root/Folder/Asset.stl."},
	}
}

func folderUUIDAndPath() []Param {
	return []Param{
		{Name: "folder_uuid", Kind: KindString, Flag: "--folder-uuid", Description: "Folder UUID."},
		{Name: "folder_path", Kind: KindString, Flag: "--folder-path", Description: "Folder path, e.g. /Root/Child/Grandchild."},
	}
}

func folderPaths() Param {
	return Param{Name: "folder_path", Kind: KindStringList, Flag: "--folder-path", Description: "Folder path(s) to process."}
}

func threshold() Param {
	return Param{
		Name:        "threshold",
		Kind:        KindNumber,
		Flag:        "--threshold",
		Range:       &Range{Min: 0, Max: 100},
		Description: "Similarity threshold (0.00 to 100.00). Default 80.0.",
	}
}

func exclusive() Param {
	return Param{Name: "exclusive", Kind: KindBool, Flag: "--exclusive", Description: "Only show matches within the specified paths."}
}

func progress() Param {
	return Param{Name: "progress", Kind: KindBool, Flag: "--progress", Description: "Display progress bar during processing."}
}

func concurrent() Param {
	return Param{
		Name:        "concurrent",
		Kind:        KindInteger,
		Flag:        "--concurrent",
		Range:       &Range{Min: 1, Max: 10},
		Description: "Maximum number of concurrent operations (1-10).",
	}
}

func params(groups ...any) []Param {
	var out []Param
	for _, g := range groups {
		switch v := g.(type) {
		case Param:
			out = append(out, v)
		case []Param:
			out = append(out, v...)
		}
	}
	return out
}

var (
	uuidOrPath             = []string{"uuid", "path"}
	folderUUIDOrFolderPath = []string{"folder_uuid", "folder_path"}
)

// Catalog returns every tool in the order tools/list reports them.
func Catalog() []*Tool {
	return []*Tool{
		{
			Name:        "pcli2",
			Description: "Physna Command Line Interface v2 (PCLI2). Runs `pcli2 folder list` or `pcli2 asset list` with the provided options.",
			Command:     []string{"{resource}", "list"},
			Params: params(
				Param{Name: "resource", Kind: KindString, Enum: []string{"folder", "asset"}, Default: "folder", Description: "Resource to list. Defaults to folder."},
				tenant(), metadata(), headers(), pretty(), format(formatsJSONCSVTree),
				Param{Name: "folder_uuid", Kind: KindString, Flag: "--folder-uuid", Description: "Folder UUID."},
				Param{Name: "folder_path", Kind: KindString, Flag: "--folder-path", Description: "Folder path, e.g. /Root/Child."},
				Param{Name: "reload", Kind: KindBool, Flag: "--reload", Description: "Reload folder cache from server."},
			),
		},
		{
			Name:        "pcli2_tenant_list",
			Description: "Runs `pcli2 tenant list`.",
			Command:     []string{"tenant", "list"},
			Params:      params(headers(), pretty(), format(formatsJSONCSV)),
		},
		{
			Name:        "pcli2_version",
			Description: "Runs `pcli2 --version`.",
			Command:     []string{"--version"},
		},
		{
			Name:        "pcli2_config_get",
			Description: "Runs `pcli2 config get`.",
			Command:     []string{"config", "get"},
			Params:      params(headers(), pretty(), format(formatsJSONCSVTree)),
		},
		{
			Name:        "pcli2_config_get_path",
			Description: "Runs `pcli2 config get path`.",
			Command:     []string{"config", "get", "path"},
			Params:      params(format(formatsJSONCSVTree)),
		},
		{
			Name:        "pcli2_config_environment_list",
			Description: "Runs `pcli2 config environment list`.",
			Command:     []string{"config", "environment", "list"},
			Params:      params(headers(), pretty(), format(formatsJSONCSV)),
		},
		{
			Name:        "pcli2_config_environment_get",
			Description: "Runs `pcli2 config environment get`.",
			Command:     []string{"config", "environment", "get"},
			Params: params(
				Param{Name: "name", Kind: KindString, Flag: "-n", Description: "Environment name (defaults to active environment)."},
				headers(), pretty(), format(formatsJSONCSV),
			),
		},
		{
			Name:        "pcli2_tenant_get",
			Description: "Runs `pcli2 tenant get` (current tenant).",
			Command:     []string{"tenant", "get"},
			Params:      params(headers(), pretty(), format(formatsJSONCSVTree)),
		},
		{
			Name:        "pcli2_tenant_state",
			Description: "Runs `pcli2 tenant state`.",
			Command:     []string{"tenant", "state"},
			Params: params(
				tenant(),
				Param{
					Name:        "type",
					Kind:        KindString,
					Flag:        "--type",
					Enum:        []string{"indexing", "finished", "failed", "unsupported", "no-3d-data", "missing-dependencies"},
					Description: "Filter assets by state.",
				},
				headers(), pretty(), format(formatsJSONCSV),
			),
		},
		{
			Name:        "pcli2_tenant_use",
			Description: "Runs `pcli2 tenant use --name <tenantName>`.",
			Command:     []string{"tenant", "use"},
			Params: params(
				Param{Name: "name", Kind: KindString, Description: "Tenant short name (as shown in tenant list)."},
				Param{Name: "tenant_name", Kind: KindString, Flag: "--name", Alias: "name", Description: "Tenant short name (alias for name)."},
				Param{Name: "refresh", Kind: KindBool, Flag: "--refresh", Description: "Force refresh cache data from API."},
				headers(), pretty(), format(formatsJSONCSV),
			),
			AnyOf: [][]string{{"tenant_name", "name"}},
		},
		{
			Name:        "pcli2_folder_get",
			Description: "Runs `pcli2 folder get`.",
			Command:     []string{"folder", "get"},
			Params:      params(tenant(), folderUUIDAndPath(), metadata(), headers(), pretty(), format(formatsJSONCSVTree)),
			AnyOf:       [][]string{folderUUIDOrFolderPath},
		},
		{
			Name:        "pcli2_folder_resolve",
			Description: "Runs `pcli2 folder resolve`.",
			Command:     []string{"folder", "resolve"},
			Params: params(
				tenant(),
				Param{Name: "folder_path", Kind: KindString, Flag: "--folder-path", Description: "Folder path, e.g. /Root/Child/Grandchild."},
			),
			Required: []string{"folder_path"},
		},
		{
			Name:        "pcli2_folder_dependencies",
			Description: "Runs `pcli2 folder dependencies`.",
			Command:     []string{"folder", "dependencies"},
			Params:      params(tenant(), folderPaths(), headers(), metadata(), pretty(), format(formatsJSONCSVTree), progress()),
			Required:    []string{"folder_path"},
		},
		{
			Name:        "pcli2_folder_geometric_match",
			Description: "Runs `pcli2 folder geometric-match`.",
			Command:     []string{"folder", "geometric-match"},
			Params: params(tenant(), folderPaths(), threshold(), exclusive(), headers(), metadata(), pretty(),
				format(formatsJSONCSV), concurrent(), progress()),
			Required: []string{"folder_path"},
		},
		{
			Name:        "pcli2_folder_part_match",
			Description: "Runs `pcli2 folder part-match`.",
			Command:     []string{"folder", "part-match"},
			Params: params(tenant(), folderPaths(), threshold(), exclusive(), headers(), metadata(), pretty(),
				format(formatsJSONCSV), concurrent(), progress()),
			Required: []string{"folder_path"},
		},
		{
			Name:        "pcli2_folder_visual_match",
			Description: "Runs `pcli2 folder visual-match`.",
			Command:     []string{"folder", "visual-match"},
			Params: params(tenant(), folderPaths(), exclusive(), headers(), metadata(), pretty(),
				format(formatsJSONCSV), concurrent(), progress()),
			Required: []string{"folder_path"},
		},
		{
			Name:        "pcli2_asset_get",
			Description: "Runs `pcli2 asset get`.",
			Command:     []string{"asset", "get"},
			Params:      params(tenant(), uuidAndPath(), headers(), metadata(), pretty(), format(formatsJSONCSV)),
			AnyOf:       [][]string{uuidOrPath},
		},
		{
			Name:        "pcli2_asset_dependencies",
			Description: "Runs `pcli2 asset dependencies`.",
			Command:     []string{"asset", "dependencies"},
			Params:      params(tenant(), uuidAndPath(), metadata(), headers(), pretty(), format(formatsJSONCSVTree)),
			AnyOf:       [][]string{uuidOrPath},
		},
		{
			Name: "pcli2_asset_thumbnail",
			Description: "Runs `pcli2 asset thumbnail` and returns the thumbnail image. Use `response_mode` to control the output format: " +
				"'url' returns an HTTP URL (efficient for LLM context, requires HTTP fetch), 'data_url' returns a base64 data URI " +
				"(self-contained, uses more tokens but renders immediately in markdown).",
			Command: []string{"asset", "thumbnail"},
			Params: params(
				tenant(), uuidAndPath(),
				Param{
					Name:    "response_mode",
					Kind:    KindString,
					Enum:    []string{responseModeURL, responseModeDataURL},
					Default: responseModeURL,
					Description: "Output format: 'url' returns an HTTP URL (efficient for LLM context, ~200 tokens), 'data_url' returns " +
						"a base64 data URI (self-contained image, ~50K tokens but renders immediately in markdown without HTTP fetch). " +
						"Use 'data_url' when the client cannot make HTTP requests or when you need the image to display immediately.",
				},
			),
			AnyOf: [][]string{uuidOrPath},
			kind:  kindThumbnail,
		},
		{
			Name:        "pcli2_asset_reprocess",
			Description: "Runs `pcli2 asset reprocess`.",
			Command:     []string{"asset", "reprocess"},
			Params:      params(tenant(), uuidAndPath()),
			AnyOf:       [][]string{uuidOrPath},
		},
		{
			Name:        "pcli2_geometric_match",
			Description: "Physna Command Line Interface v2 (PCLI2). Runs `pcli2 asset geometric-match` with the provided options.",
			Command:     []string{"asset", "geometric-match"},
			Params:      params(tenant(), uuidAndPath(), threshold(), headers(), metadata(), pretty(), format(formatsJSONCSV)),
			AnyOf:       [][]string{uuidOrPath},
		},
		{
			Name:        "pcli2_asset_part_match",
			Description: "Runs `pcli2 asset part-match`.",
			Command:     []string{"asset", "part-match"},
			Params:      params(tenant(), uuidAndPath(), threshold(), headers(), metadata(), pretty(), format(formatsJSONCSV)),
			AnyOf:       [][]string{uuidOrPath},
		},
		{
			Name:        "pcli2_asset_visual_match",
			Description: "Runs `pcli2 asset visual-match`.",
			Command:     []string{"asset", "visual-match"},
			Params:      params(tenant(), uuidAndPath(), headers(), metadata(), pretty(), format(formatsJSONCSV)),
			AnyOf:       [][]string{uuidOrPath},
		},
		{
			Name:        "pcli2_asset_text_match",
			Description: "Runs `pcli2 asset text-match`.",
			Command:     []string{"asset", "text-match"},
			Params: params(
				tenant(),
				Param{Name: "text", Kind: KindString, Flag: "--text", Description: "Text query to search for in assets."},
				Param{Name: "fuzzy", Kind: KindBool, Flag: "--fuzzy", Description: "Perform fuzzy search instead of exact search."},
				headers(), metadata(), pretty(), format(formatsJSONCSV),
			),
			Required: []string{"text"},
		},
		{
			Name:        "pcli2_asset_metadata_create",
			Description: "Runs `pcli2 asset metadata create`.",
			Command:     []string{"asset", "metadata", "create"},
			Params: params(
				tenant(), uuidAndPath(),
				Param{Name: "name", Kind: KindString, Flag: "--name", Description: "Metadata property name."},
				Param{Name: "value", Kind: KindString, Flag: "--value", Description: "Metadata property value."},
				Param{Name: "type", Kind: KindString, Flag: "--type", Enum: []string{"text", "number", "boolean"}, Description: "Metadata field type."},
			),
			Required: []string{"name", "value"},
			AnyOf:    [][]string{uuidOrPath},
		},
		{
			Name:        "pcli2_asset_metadata_delete",
			Description: "Runs `pcli2 asset metadata delete`.",
			Command:     []string{"asset", "metadata", "delete"},
			Params: params(
				tenant(), uuidAndPath(),
				Param{
					Name:        "name",
					Kind:        KindStringList,
					Flag:        "--name",
					Split:       true,
					Description: "Metadata property name. Can be a string, comma-separated string, or array.",
				},
				format(formatsJSONCSV),
			),
			Required: []string{"name"},
			AnyOf:    [][]string{uuidOrPath},
		},
		{
			Name:        "pcli2_thumbnail_cache_cleanup",
			Description: "Removes expired thumbnails from the cache to free up disk space.",
			kind:        kindCacheCleanup,
		},
	}
}
