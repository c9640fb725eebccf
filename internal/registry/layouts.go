package registry

import "github.com/wyd-tools/gamevault/internal/model"

// The layouts below are the built-in RecordLayout values for the known
// binary game-data kinds: fixed-width name strings followed by
// fixed-width numeric stat fields, the convention every WYD-family item
// and server table follows.

// ItemListLayout is the 128-byte-record layout for ItemList.bin.
var ItemListLayout = model.RecordLayout{
	Name:       "ItemList",
	HeaderSize: 0,
	RecordSize: 128,
	Fields: []model.Field{
		{Name: "name", Type: model.FieldString, ByteOffset: 0, ByteLength: 16},
		{Name: "index", Type: model.FieldUint16, ByteOffset: 16, ByteLength: 2},
		{Name: "itemType", Type: model.FieldUint16, ByteOffset: 18, ByteLength: 2},
		{Name: "level", Type: model.FieldUint16, ByteOffset: 20, ByteLength: 2},
		{Name: "attackMin", Type: model.FieldUint16, ByteOffset: 22, ByteLength: 2},
		{Name: "attackMax", Type: model.FieldUint16, ByteOffset: 24, ByteLength: 2},
		{Name: "defense", Type: model.FieldUint16, ByteOffset: 26, ByteLength: 2},
		{Name: "durability", Type: model.FieldUint16, ByteOffset: 28, ByteLength: 2},
		{Name: "price", Type: model.FieldUint32, ByteOffset: 30, ByteLength: 4},
		{Name: "flags", Type: model.FieldUint32, ByteOffset: 34, ByteLength: 4},
		{Name: "description", Type: model.FieldString, ByteOffset: 38, ByteLength: 90},
	},
}

// ServerListLayout is the 96-byte-record layout for ServerList.bin.
var ServerListLayout = model.RecordLayout{
	Name:       "ServerList",
	HeaderSize: 0,
	RecordSize: 96,
	Fields: []model.Field{
		{Name: "name", Type: model.FieldString, ByteOffset: 0, ByteLength: 32},
		{Name: "address", Type: model.FieldString, ByteOffset: 32, ByteLength: 32},
		{Name: "port", Type: model.FieldUint16, ByteOffset: 64, ByteLength: 2},
		{Name: "capacity", Type: model.FieldUint16, ByteOffset: 66, ByteLength: 2},
		{Name: "flags", Type: model.FieldUint32, ByteOffset: 68, ByteLength: 4},
		{Name: "reserved", Type: model.FieldBytes, ByteOffset: 72, ByteLength: 24},
	},
}

// SkillDataLayout is the 64-byte-record layout for Skill*.bin.
var SkillDataLayout = model.RecordLayout{
	Name:       "SkillData",
	HeaderSize: 0,
	RecordSize: 64,
	Fields: []model.Field{
		{Name: "name", Type: model.FieldString, ByteOffset: 0, ByteLength: 20},
		{Name: "skillID", Type: model.FieldUint16, ByteOffset: 20, ByteLength: 2},
		{Name: "manaCost", Type: model.FieldUint16, ByteOffset: 22, ByteLength: 2},
		{Name: "cooldownMs", Type: model.FieldUint32, ByteOffset: 24, ByteLength: 4},
		{Name: "damage", Type: model.FieldUint16, ByteOffset: 28, ByteLength: 2},
		{Name: "requiredLevel", Type: model.FieldUint16, ByteOffset: 30, ByteLength: 2},
		{Name: "description", Type: model.FieldString, ByteOffset: 32, ByteLength: 32},
	},
}
