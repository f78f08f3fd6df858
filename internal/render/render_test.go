package render_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"

	"periscope/internal/platform"
	"periscope/internal/render"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const tree = `
-- platforms/cpus/stm32f4.repl --
usart1: UART.STM32_UART @ sysbus 0x40011000
usart2: UART.STM32_UART @ sysbus 0x40004400
-- platforms/boards/stm32f4_discovery.repl --
using "platforms/cpus/stm32f4.repl"
led0 : Led @ gpioPortD 12
-- platforms/boards/litex_vexriscv.repl --
cpu: CPU.VexRiscv @ sysbus
`

var categories = map[string]string{
	"stm32f4":           "STM",
	"stm32f4_discovery": "STM",
	"litex_vexriscv":    "LITEX",
}

// loadRegistry writes tree and loads the named platforms in order.
func loadRegistry(t *testing.T, names ...string) (string, *platform.Registry) {
	t.Helper()
	root := t.TempDir()
	for _, f := range txtar.Parse([]byte(tree)).Files {
		path := filepath.Join(root, filepath.FromSlash(f.Name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, f.Data, 0o644))
	}
	reg := platform.NewRegistry(platform.Options{
		TopDir: root,
		Categorizer: platform.CategorizerFunc(func(name, _ string) (string, error) {
			return categories[name], nil
		}),
		Resolver: platform.ResolverFunc(func(typ string) (string, bool) {
			if typ == "STM32_UART" {
				return "https://example.test/UART/STM32_UART.cs", true
			}
			return "", false
		}),
	})
	for _, n := range names {
		_, err := reg.Get(filepath.Join(root, "platforms", n))
		require.NoError(t, err)
	}
	return root, reg
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ---------------------------------------------------------------------------
// Format registry
// ---------------------------------------------------------------------------

func TestFormatsRegistry(t *testing.T) {
	require.Len(t, render.Formats, len(render.Order))
	for _, name := range render.Order {
		r, ok := render.Formats[name]
		require.True(t, ok, name)
		assert.Equal(t, name, r.Name())
	}
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

func TestJSONFields(t *testing.T) {
	root, reg := loadRegistry(t, "boards/stm32f4_discovery.repl")

	var buf bytes.Buffer
	require.NoError(t, render.JSON{}.Render(&buf, reg))
	assert.True(t, strings.HasSuffix(buf.String(), "]\n"))

	var doc []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc, 2)

	board := doc[1]
	assert.Equal(t, []string{"category", "includes", "name", "ownPeripherals", "path"}, keys(board))
	assert.Equal(t, "stm32f4_discovery", board["name"])
	assert.Equal(t, "STM", board["category"])
	assert.Equal(t, filepath.Join(root, "platforms/boards/stm32f4_discovery.repl"), board["path"])

	includes := board["includes"].([]any)
	require.Len(t, includes, 1)
	inc := includes[0].(map[string]any)
	assert.Equal(t, []string{"category", "includes", "name", "ownPeripherals", "path"}, keys(inc))
	assert.Equal(t, "stm32f4", inc["name"])

	own := board["ownPeripherals"].([]any)
	require.Len(t, own, 1)
	led := own[0].(map[string]any)
	assert.Equal(t, []string{"count", "kind", "type"}, keys(led), "absent reference is omitted")
	assert.Equal(t, "Others", led["kind"])

	uart := inc["ownPeripherals"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(2), uart["count"])
	assert.Equal(t, "https://example.test/UART/STM32_UART.cs", uart["uri"])
}

func TestJSONKeyOrderIsStable(t *testing.T) {
	_, reg := loadRegistry(t, "cpus/stm32f4.repl")

	var buf bytes.Buffer
	require.NoError(t, render.JSON{}.Render(&buf, reg))
	out := buf.String()

	order := []string{`"category"`, `"includes": []`, `"name"`, `"ownPeripherals"`, `"count"`, `"kind"`, `"type"`, `"uri"`, `"path"`}
	last := -1
	for _, k := range order {
		i := strings.Index(out, k)
		require.GreaterOrEqual(t, i, 0, "missing %s in\n%s", k, out)
		assert.Greater(t, i, last, "%s out of order", k)
		last = i
	}
	assert.Contains(t, out, "\n    {\n        \"category\"")
}

func TestJSONEmptyRegistry(t *testing.T) {
	_, reg := loadRegistry(t)
	var buf bytes.Buffer
	require.NoError(t, render.JSON{}.Render(&buf, reg))
	assert.Equal(t, "[]\n", buf.String())
}

// ---------------------------------------------------------------------------
// YAML
// ---------------------------------------------------------------------------

func TestYAMLMatchesRecords(t *testing.T) {
	_, reg := loadRegistry(t, "boards/stm32f4_discovery.repl")

	var buf bytes.Buffer
	require.NoError(t, render.YAML{}.Render(&buf, reg))

	var got []render.PlatformRecord
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, render.Records(reg), got)
	assert.Contains(t, buf.String(), "ownPeripherals:")
}

// ---------------------------------------------------------------------------
// HTML
// ---------------------------------------------------------------------------

func TestHTMLReport(t *testing.T) {
	_, reg := loadRegistry(t, "boards/litex_vexriscv.repl", "boards/stm32f4_discovery.repl")

	var buf bytes.Buffer
	require.NoError(t, render.HTML{}.Render(&buf, reg))
	out := buf.String()

	assert.Equal(t, 1, strings.Count(out, "<script>"))
	assert.Equal(t, 1, strings.Count(out, "<style>"))
	assert.NotContains(t, out, "<html")
	assert.Equal(t, 2, strings.Count(out, `<div class="category">`))
	assert.Equal(t, 3, strings.Count(out, `class="peripherals-table"`))

	// Categories appear in first-assigned order, platforms grouped under them.
	litex := strings.Index(out, "<h3 onclick=\"toggleCategory(this)\">LITEX</h3>")
	stm := strings.Index(out, "<h3 onclick=\"toggleCategory(this)\">STM</h3>")
	require.GreaterOrEqual(t, litex, 0)
	require.Greater(t, stm, litex)
	assert.Greater(t, strings.Index(out, `data-platform="stm32f4"`), stm)
	assert.Contains(t, out, `<h4 data-platform="stm32f4_discovery" onclick="showPeripherals(this)">stm32f4_discovery</h4>`)

	assert.Contains(t, out, `<div id="peripherals-stm32f4_discovery" class="peripherals-table" style="display: none">`)
	assert.Contains(t, out, `<a href="https://example.test/UART/STM32_UART.cs">STM32_UART</a> (x2)`)
	assert.Contains(t, out, "<td>Led</td>")
	assert.Contains(t, out, "<td>VexRiscv</td>")
	assert.NotContains(t, out, "(x1)")
}

func TestHTMLEscapesNames(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "evil<b>.repl")
	require.NoError(t, os.WriteFile(path, []byte("x : A.B<i> @ sysbus\n"), 0o644))
	reg := platform.NewRegistry(platform.Options{
		TopDir:      root,
		Categorizer: platform.CategorizerFunc(func(string, string) (string, error) { return "C&D", nil }),
	})
	_, err := reg.Get(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, render.HTML{}.Render(&buf, reg))
	out := buf.String()
	assert.NotContains(t, out, "evil<b>")
	assert.NotContains(t, out, "B<i>")
	assert.Contains(t, out, "C&amp;D")
}
