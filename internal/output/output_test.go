package output

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/knitgrid/internal/config"
	"github.com/vk/knitgrid/internal/grid"
	"github.com/vk/knitgrid/internal/sequencer"
)

// sample sequences a 1x2 grid whose rows differ in boundary class, so every
// instruction kind appears.
func sample(t *testing.T) []sequencer.Instruction {
	t.Helper()
	g, err := grid.New(1, 2)
	require.NoError(t, err)
	require.NoError(t, g.Set(1, 1, grid.Cell{Semantic: "3", Boundary: "A", Marking: "9", Obstacle: "0", Frame: "1", Sign: "+"}))
	require.NoError(t, g.Set(1, 2, grid.Cell{Semantic: "4", Boundary: "B", Marking: "0", Obstacle: "2", Frame: "2", Sign: "-"}))

	r := config.NewModel()
	r.Set(config.CategorySemantic, "+3", "KNIT")
	r.Set(config.CategorySemantic, "-4", "  TUCK\n  HOLD ")
	r.Set(config.CategoryMarking, "9", "ROLL")
	r.Set(config.CategoryLineSwitch, "+AB", "TURN")
	r.Set(config.CategoryBoundarySwitch, "+AB", "SWAP")
	r.Set(config.CategoryObstacle, "2", "SKIP")

	instrs, err := sequencer.Sequence(g, r)
	require.NoError(t, err)
	require.Len(t, instrs, 4)
	return instrs
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(data, bom), "missing BOM")
	rows, err := csv.NewReader(bytes.NewReader(data[len(bom):])).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteDataCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDataCSV(&buf, sample(t)))

	rows := readCSV(t, buf.Bytes())
	expected := [][]string{
		DataHeader,
		{"1", "1", "1", "+3", "A", "9", "0", "1", "+", "+11", "+11", ""},
		{"", "", "", "", "+AB", "9", "", "", "+", "", "", MarkLineSwitch},
		{"", "", "", "", "+AB", "", "", "", "+", "", "", MarkBoundarySwitch},
		{"2", "1", "2", "-4", "B", "0", "2", "2", "-", "+12", "+12", ""},
	}
	assert.Equal(t, expected, rows)
}

func TestWriteCommandCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCommandCSV(&buf, sample(t)))

	rows := readCSV(t, buf.Bytes())
	expected := [][]string{
		{"INDEX", "PRE_ACTION_CMD", "DUMU_CMD", "SEMA_CMD", "POST_ACTION_CMD", "LUOLA_CMD", "LINE_SWITCH_CMD", "SHAXIAN_SWITCH_CMD"},
		{"1", "", "", "KNIT", "", "", "", ""},
		{"", "", "", "", "", "ROLL", "TURN", ""},
		{"", "", "", "", "", "", "", "SWAP"},
		{"2", "", "SKIP", "  TUCK\n  HOLD ", "", "", "", ""},
	}
	assert.Equal(t, expected, rows)
}

func TestWriteRawProgram(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRawProgram(&buf, " START \n", sample(t), "END"))

	expected := `# [HEAD START]
START
# [HEAD END]

# INDEX: 1, Source: SEMA_CMD
KNIT
# INDEX: CONTROL_LINE, Source: LUOLA_CMD
ROLL
# INDEX: CONTROL_LINE, Source: [LINE_SWITCH] LINE_SWITCH_CMD
TURN
# INDEX: CONTROL_LINE, Source: [SHAXIAN_SWITCH] SHAXIAN_SWITCH_CMD
SWAP
# INDEX: 2, Source: DUMU_CMD
SKIP
# INDEX: 2, Source: SEMA_CMD
TUCK
HOLD

# [TAIL START]
END
# [TAIL END]
`
	assert.Equal(t, expected, buf.String())
}

func TestWriteRawProgram_NoHeadOrTail(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRawProgram(&buf, "", nil, "  "))
	assert.Empty(t, buf.String())
}

func TestWriteSimpleProgram(t *testing.T) {
	instrs := sample(t)
	lines := sequencer.Assemble("START", instrs, "END")

	var buf bytes.Buffer
	require.NoError(t, WriteSimpleProgram(&buf, lines))
	assert.Equal(t, "START\nKNIT\nROLL\nTURN\nSWAP\nSKIP\nTUCK\nHOLD\nEND\n", buf.String())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", SimpleProgram)

	n, err := WriteFile(path, func(w io.Writer) error {
		return WriteSimpleProgram(w, []string{"a", "b"})
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))
}
