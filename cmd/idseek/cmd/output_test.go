package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_AlignsWideCharacters(t *testing.T) {
	tbl := &table{header: []string{"TABLE", "ID"}}
	tbl.add(plain("事件"), plain("1"))
	tbl.add(plain("device_events"), painted("1004", okText))

	lines := strings.Split(strings.TrimRight(tbl.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"TABLE          ID",
		"事件           1",
		"device_events  1004",
	}, lines)
}

func TestTable_ShortRow(t *testing.T) {
	tbl := &table{header: []string{"A", "B", "C"}}
	tbl.add(plain("x"))
	assert.Equal(t, "A  B  C\nx\n", tbl.String())
}
