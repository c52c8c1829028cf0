package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_WithDefaults(t *testing.T) {
	tbl := Table{Name: "device_events"}.WithDefaults()
	assert.Equal(t, "id", tbl.IDColumn)
	assert.Equal(t, "create_time", tbl.TimeColumn)

	custom := Table{Name: "meter_sample", IDColumn: "sample_id", TimeColumn: "sampled_at"}.WithDefaults()
	assert.Equal(t, "sample_id", custom.IDColumn)
	assert.Equal(t, "sampled_at", custom.TimeColumn)

	assert.Equal(t, NewTable("x"), Table{Name: "x"}.WithDefaults())
	assert.Equal(t, "x", NewTable("x").String())
}

func TestStoreError(t *testing.T) {
	cause := errors.New("i/o timeout")

	probeErr := NewProbeError("ordinal_at", "meter_sample", 42, cause)
	assert.ErrorIs(t, probeErr, ErrStoreUnavailable)
	assert.ErrorIs(t, probeErr, cause)
	assert.Equal(t, "ordinal_at meter_sample id=42: i/o timeout", probeErr.Error())

	boundsErr := NewStoreError("bounds", "meter_sample", cause)
	assert.Equal(t, "bounds meter_sample: i/o timeout", boundsErr.Error())

	sessErr := &StoreError{Op: "session", Err: cause}
	assert.Equal(t, "session: i/o timeout", sessErr.Error())
}

func TestStoreError_WithTable(t *testing.T) {
	base := &StoreError{Op: "session", Err: errors.New("refused")}

	named := base.WithTable("device_events")
	assert.Equal(t, "session device_events: refused", named.Error())
	assert.Equal(t, "", base.Table, "the original error is not modified")
	assert.ErrorIs(t, named, ErrStoreUnavailable)

	assert.Same(t, named, named.WithTable("other"), "an existing table name is kept")
}
