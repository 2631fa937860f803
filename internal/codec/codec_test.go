package codec

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/searchq/internal/core"
)

func sampleRequest() core.Request {
	qb := core.NewQueryBuilder(
		core.WithSearchHub("support"),
		core.WithLocale("en"),
		core.WithContext(map[string]core.ContextValue{
			"role":   core.ContextString("agent"),
			"groups": core.ContextStrings("a", "b"),
		}),
	)
	qb.Expression.Add("shoes")
	qb.AdvancedExpression.AddFieldExpression("@date", ">=", "today-30d")
	qb.DisjunctionExpression.Add("sale")
	qb.EnableWildcards = core.BoolPtr(true)
	qb.ExcerptLength = core.IntPtr(200)
	qb.RankingFunctions = append(qb.RankingFunctions, core.RankingFunction{
		Expression: "@views",
		Modifier:   core.Float64Ptr(1.5),
	})
	qb.GroupByRequests = append(qb.GroupByRequests, qb.GroupByExcept("@filetype", "shoes"))
	return qb.Build()
}

func TestForName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "json", want: FormatJSON},
		{name: " MsgPack ", want: FormatMsgpack},
		{name: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ForName(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, core.ErrUnknownFormat))
				assert.Contains(t, err.Error(), "json, msgpack")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}
}

func TestJSON_WireNames(t *testing.T) {
	data, err := JSON{}.Marshal(sampleRequest())
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))

	assert.Equal(t, "shoes", wire["q"])
	assert.Equal(t, `@date>="today-30d"`, wire["aq"])
	assert.Equal(t, "sale", wire["dq"])
	assert.Equal(t, "support", wire["searchHub"])
	assert.Equal(t, true, wire["wildcards"])
	assert.Equal(t, float64(200), wire["excerptLength"])
	assert.Nil(t, wire["fieldsToInclude"])
	assert.Contains(t, wire, "fieldsToInclude")
	assert.Equal(t, []any{"a", "b"}, wire["context"].(map[string]any)["groups"])
	assert.NotContains(t, string(data), `\u003e`, "operators must not be HTML escaped")
}

func TestJSON_Indent(t *testing.T) {
	data, err := JSON{Indent: "  "}.Marshal(core.QueryBuilderExpression{Full: "a"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"full\": \"a\",\n  \"withoutConstant\": \"\",\n  \"constant\": \"\",\n  \"dq\": \"\"\n}", string(data))
}

func TestCodecs_RoundTrip(t *testing.T) {
	for _, c := range []Codec{JSON{}, Msgpack{}} {
		t.Run(c.Name(), func(t *testing.T) {
			in := sampleRequest()

			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out core.Request
			require.NoError(t, c.Unmarshal(data, &out))

			diff := cmp.Diff(in, out, cmpopts.EquateEmpty(), cmp.AllowUnexported(core.ContextValue{}))
			assert.Empty(t, diff)
			assert.Nil(t, out.FieldsToInclude, "nil projection must survive the round trip")
		})
	}
}

func TestCodecs_Expression(t *testing.T) {
	qb := core.NewQueryBuilder()
	qb.Expression.Add("a")
	qb.ConstantExpression.Add("k")
	expr := qb.ComputeCompleteExpressionParts()

	for _, c := range []Codec{JSON{}, Msgpack{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(expr)
			require.NoError(t, err)

			var out core.QueryBuilderExpression
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, expr, out)
		})
	}
}

func TestCodecs_DecodeError(t *testing.T) {
	var req core.Request
	assert.Error(t, JSON{}.Unmarshal([]byte("{"), &req))
	assert.Error(t, Msgpack{}.Unmarshal([]byte{0xc1}, &req))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"json", "msgpack"}, Names())
}
