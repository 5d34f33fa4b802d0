package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	xlsxexport "github.com/testvox/testvox/internal/export"
)

func TestNewCmdExport(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	in := filepath.Join(dir, "junit.xml")
	out := filepath.Join(dir, "out.xlsx")
	require.NoError(t, os.WriteFile(in, []byte(`<testsuite name="s">
  <testcase name="ok" time="1"/>
  <testcase name="ko" time="2"><failure message="boom"/></testcase>
</testsuite>`), 0644))

	cmd := NewCmdExport()
	cmd.SetArgs([]string{in, "--output", out})
	require.NoError(t, cmd.Execute())

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxexport.SheetFailures)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "s", "ko", "Failed", "2", "boom"}, rows[1])
}
