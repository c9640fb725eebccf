package registry

import "github.com/wyd-tools/gamevault/internal/model"

// registerBuiltins wires the minimum set of descriptors: well-known
// binary game-data filenames, the text-format extensions, and the
// signature bytes for common container formats plus JSON/XML-like
// text.
func registerBuiltins(r *Registry) {
	bin := func(kind model.BinaryKind, ext string, layout *model.RecordLayout) model.FormatDescriptor {
		return model.FormatDescriptor{Kind: "binary", BinaryKind: kind, Extension: ext, RecordLayout: layout}
	}
	text := func(kind model.TextKind, ext string) model.FormatDescriptor {
		return model.FormatDescriptor{Kind: "text", TextKind: kind, Extension: ext}
	}

	// Well-known filenames for the fixed-record game-data tables.
	r.RegisterNamePattern("ItemList.bin", bin(model.BinaryItemList, ".bin", &ItemListLayout))
	r.RegisterNamePattern("ItemName.bin", bin(model.BinaryItemName, ".bin", nil))
	r.RegisterNamePattern("ItemHelp.bin", bin(model.BinaryItemHelp, ".bin", nil))
	r.RegisterNamePattern("ServerList.bin", bin(model.BinaryServerList, ".bin", &ServerListLayout))
	r.RegisterNamePattern("Skill*.bin", bin(model.BinarySkillData, ".bin", &SkillDataLayout))

	// Extensions.
	r.RegisterExtension(".msh", bin(model.BinaryMesh, ".msh", nil))
	r.RegisterExtension(".ani", bin(model.BinaryAnimation, ".ani", nil))
	r.RegisterExtension(".smd", bin(model.BinaryStaticMesh, ".smd", nil))
	r.RegisterExtension(".map", bin(model.BinaryMapData, ".map", nil))
	r.RegisterExtension(".ui", bin(model.BinaryUIComponent, ".ui", nil))

	r.RegisterExtension(".json", text(model.TextJSON, ".json"))
	r.RegisterExtension(".xml", text(model.TextXML, ".xml"))
	r.RegisterExtension(".csv", text(model.TextCSV, ".csv"))
	r.RegisterExtension(".ini", text(model.TextINI, ".ini"))
	r.RegisterExtension(".cfg", text(model.TextINI, ".cfg"))
	r.RegisterExtension(".txt", text(model.TextPlain, ".txt"))
	r.RegisterExtension(".go", text(model.TextSourceCode, ".go"))
	r.RegisterExtension(".cpp", text(model.TextSourceCode, ".cpp"))
	r.RegisterExtension(".h", text(model.TextSourceCode, ".h"))
	r.RegisterExtension(".lua", text(model.TextSourceCode, ".lua"))

	// Signatures: PNG, JPEG, GIF, ZIP, GZIP, and the JSON-like/XML-like
	// leading-byte heuristics.
	r.RegisterSignature([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, model.FormatDescriptor{Kind: "binary", BinaryKind: model.BinaryGeneric, Extension: ".png"})
	r.RegisterSignature([]byte{0xFF, 0xD8, 0xFF}, model.FormatDescriptor{Kind: "binary", BinaryKind: model.BinaryGeneric, Extension: ".jpg"})
	r.RegisterSignature([]byte("GIF87a"), model.FormatDescriptor{Kind: "binary", BinaryKind: model.BinaryGeneric, Extension: ".gif"})
	r.RegisterSignature([]byte("GIF89a"), model.FormatDescriptor{Kind: "binary", BinaryKind: model.BinaryGeneric, Extension: ".gif"})
	r.RegisterSignature([]byte{'P', 'K', 0x03, 0x04}, model.FormatDescriptor{Kind: "binary", BinaryKind: model.BinaryGeneric, Extension: ".zip"})
	r.RegisterSignature([]byte{0x1F, 0x8B}, model.FormatDescriptor{Kind: "binary", BinaryKind: model.BinaryGeneric, Extension: ".gz"})
	r.RegisterSignature([]byte("{"), text(model.TextJSON, ".json"))
	r.RegisterSignature([]byte("["), text(model.TextJSON, ".json"))
	r.RegisterSignature([]byte("<"), text(model.TextXML, ".xml"))
}
