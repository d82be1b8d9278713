package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/routegen/internal/ir"
)

func TestShapeOf(t *testing.T) {
	api := filesAPI()

	tests := []struct {
		name  string
		route ir.Route
		want  RouteShape
	}{
		{
			name:  "void everything",
			route: ir.Route{Name: "r"},
			want:  RouteShape{ArgVoid: true, Result: ResultVoid, Style: ir.StyleRPC},
		},
		{
			name:  "struct result",
			route: ir.Route{Name: "r", Arg: ir.Named("GetMetadataArg"), Result: ir.Named("FileMetadata")},
			want:  RouteShape{Result: ResultStruct, Style: ir.StyleRPC},
		},
		{
			name:  "union kind result decodes as struct",
			route: ir.Route{Name: "r", Result: ir.Named("GetMetadataError")},
			want:  RouteShape{ArgVoid: true, Result: ResultStruct, Style: ir.StyleRPC},
		},
		{
			name:  "list result decodes as struct",
			route: ir.Route{Name: "r", Result: ir.ListOf(ir.Named("Metadata"))},
			want:  RouteShape{ArgVoid: true, Result: ResultStruct, Style: ir.StyleRPC},
		},
		{
			name:  "primitive result",
			route: ir.Route{Name: "r", Result: ir.Primitive(ir.PrimString)},
			want:  RouteShape{ArgVoid: true, Result: ResultStruct, Style: ir.StyleRPC},
		},
		{
			name: "deprecated download",
			route: ir.Route{Name: "r", Arg: ir.Named("DownloadArg"), Result: ir.Named("FileMetadata"),
				Attrs: map[string]string{ir.AttrStyle: "download"}, Deprecated: &ir.Deprecation{}},
			want: RouteShape{Result: ResultStruct, Style: ir.StyleDownload, Deprecated: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShapeOf(api, "files", tt.route)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShapeOf_Union(t *testing.T) {
	api := filesAPI()

	got, err := ShapeOf(api, "files", api.Namespaces[0].Routes[0])
	require.NoError(t, err)

	assert.Equal(t, ResultUnion, got.Result)
	require.NotNil(t, got.Union)
	assert.Equal(t, "Metadata", got.Union.Name)
	assert.Equal(t, []string{"file", "folder"}, got.Union.SubtypeTags())
}

func TestShapeOf_Errors(t *testing.T) {
	api := filesAPI()

	_, err := ShapeOf(api, "files", ir.Route{Name: "r", Attrs: map[string]string{ir.AttrStyle: "stream"}})
	assert.ErrorContains(t, err, `unknown style "stream"`)

	_, err = ShapeOf(api, "files", ir.Route{Name: "r", Result: ir.Named("Missing")})
	assert.ErrorIs(t, err, ErrUnresolvedType)
}

func TestResultShape_String(t *testing.T) {
	assert.Equal(t, "void", ResultVoid.String())
	assert.Equal(t, "struct", ResultStruct.String())
	assert.Equal(t, "union", ResultUnion.String())
	assert.Equal(t, "ResultShape(7)", ResultShape(7).String())
}

// Every style and result shape has a table entry, so no emitter falls back
// to a zero value by accident.
func TestShapeTablesComplete(t *testing.T) {
	for style := range ir.ValidStyles {
		_, ok := styleTable[style]
		assert.True(t, ok, "style %s", style)
	}
	for _, s := range []ResultShape{ResultVoid, ResultStruct, ResultUnion} {
		_, ok := resultTable[s]
		assert.True(t, ok, "result %s", s)
		_, ok = decodeTable[s]
		assert.True(t, ok, "decoder %s", s)
	}
}
