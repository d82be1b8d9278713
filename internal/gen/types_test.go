package gen

import (
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/routegen/internal/ir"
)

// filesAPI is the API most tests in this package generate from.
func filesAPI() *ir.API {
	return &ir.API{Namespaces: []ir.Namespace{
		{
			Name: "files",
			Types: []ir.TypeDef{
				{Name: "GetMetadataArg", Kind: ir.DefStruct},
				{Name: "Metadata", Kind: ir.DefStruct, Subtypes: []ir.Subtype{
					{Tag: "file", Type: "FileMetadata"},
					{Tag: "folder", Type: "FolderMetadata"},
				}},
				{Name: "FileMetadata", Kind: ir.DefStruct},
				{Name: "FolderMetadata", Kind: ir.DefStruct},
				{Name: "GetMetadataError", Kind: ir.DefUnion},
				{Name: "DownloadArg", Kind: ir.DefStruct},
				{Name: "UploadArg", Kind: ir.DefStruct},
			},
			Routes: []ir.Route{
				{Name: "get_metadata", Arg: ir.Named("GetMetadataArg"), Result: ir.Named("Metadata"), Error: ir.Named("GetMetadataError")},
			},
		},
		{
			Name:  "sharing",
			Types: []ir.TypeDef{{Name: "SharedLink", Kind: ir.DefStruct}},
		},
	}}
}

func TestTypeFormatter_Format(t *testing.T) {
	f := NewTypeFormatter(filesAPI(), Options{})

	tests := []struct {
		ref          string
		useInterface bool
		want         string
	}{
		{"Void", false, ""},
		{"String", false, "string"},
		{"Boolean", false, "bool"},
		{"Int32", false, "int32"},
		{"UInt64", false, "uint64"},
		{"Float64", false, "float64"},
		{"Timestamp", false, "time.Time"},
		{"Bytes", false, "[]byte"},
		{"String?", false, "string"},
		{"FileMetadata", false, "*FileMetadata"},
		{"FileMetadata?", false, "*FileMetadata"},
		{"GetMetadataError", false, "*GetMetadataError"},
		{"Metadata", false, "*Metadata"},
		{"Metadata", true, "IsMetadata"},
		{"FileMetadata", true, "*FileMetadata"},
		{"sharing.SharedLink", false, "*sharing.SharedLink"},
		{"files.FileMetadata", false, "*FileMetadata"},
		{"List(String)", false, "[]string"},
		{"List(Metadata)", true, "[]IsMetadata"},
		{"List(List(Int64))", false, "[][]int64"},
		{"Map(FileMetadata)", false, "map[string]*FileMetadata"},
		{"Map(List(sharing.SharedLink))", false, "map[string][]*sharing.SharedLink"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := f.Format("files", ir.MustParseTypeRef(tt.ref), tt.useInterface)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTypeFormatter_FormatImports(t *testing.T) {
	f := NewTypeFormatter(filesAPI(), Options{SDKPackage: "example.com/sdk/dropbox/"})

	got, err := f.Format("files", ir.MustParseTypeRef("sharing.SharedLink"), false)
	require.NoError(t, err)
	assert.Equal(t, "example.com/sdk/dropbox/sharing", got.Import)
	assert.Equal(t, "sharing", got.Package)

	got, err = f.Format("files", ir.MustParseTypeRef("Timestamp"), false)
	require.NoError(t, err)
	assert.Equal(t, "time", got.Import)

	got, err = f.Format("files", ir.MustParseTypeRef("FileMetadata"), false)
	require.NoError(t, err)
	assert.Empty(t, got.Import, "local types are not imported")
}

func TestTypeFormatter_Unresolved(t *testing.T) {
	f := NewTypeFormatter(filesAPI(), Options{})

	for _, ref := range []ir.TypeRef{
		ir.Named("Missing"),
		ir.QualifiedNamed("sharing", "FileMetadata"),
		ir.QualifiedNamed("nowhere", "X"),
		ir.Primitive("Int128"),
		ir.ListOf(ir.Named("Missing")),
		{Kind: ir.KindList},
		{Kind: ir.KindMap, Elem: &ir.TypeRef{Kind: ir.KindVoid}},
		{Kind: "tuple"},
	} {
		t.Run(ref.String(), func(t *testing.T) {
			_, err := f.Format("files", ref, false)
			assert.ErrorIs(t, err, ErrUnresolvedType)
		})
	}
}

func TestTypeFormatter_ResolveRoundTrip(t *testing.T) {
	f := NewTypeFormatter(filesAPI(), Options{})

	for _, ref := range []string{
		"Void", "String", "Boolean", "Int32", "Int64", "UInt32", "UInt64",
		"Float32", "Float64", "Timestamp", "Bytes",
		"FileMetadata", "Metadata", "GetMetadataError", "sharing.SharedLink",
		"List(FileMetadata)", "List(Bytes)", "Map(List(String))", "Map(sharing.SharedLink)",
	} {
		for _, useInterface := range []bool{false, true} {
			parsed := ir.MustParseTypeRef(ref)
			expr, err := f.Format("files", parsed, useInterface)
			require.NoError(t, err)

			back, err := f.Resolve("files", expr.String())
			require.NoError(t, err, "resolving %q", expr.String())
			assert.Equal(t, parsed.Identity("files"), back.Identity("files"), "%s via %q", ref, expr.String())
		}
	}
}

func TestTypeFormatter_ResolveRejects(t *testing.T) {
	f := NewTypeFormatter(filesAPI(), Options{})

	for _, expr := range []string{
		"FileMetadata",   // structs are always pointers
		"IsFileMetadata", // not polymorphic
		"*Missing",
		"*sharing.FileMetadata",
		"chan int",
	} {
		_, err := f.Resolve("files", expr)
		assert.ErrorIs(t, err, ErrUnresolvedType, expr)
	}
}

func TestTypeExpr_Code(t *testing.T) {
	f := NewTypeFormatter(filesAPI(), Options{})
	expr, err := f.Format("files", ir.MustParseTypeRef("Map(List(sharing.SharedLink))"), false)
	require.NoError(t, err)

	assert.Contains(t, fmtCode(t, jen.Var().Id("x").Add(expr.Code())), "var x map[string][]*sharing.SharedLink")
}
