package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crawlserv/crawlservpp-sub000/internal/store"
)

func TestAllFieldSpecsPrependsReservedColumns(t *testing.T) {
	m := &Module{cfg: Config{TargetFields: []store.FieldSpec{{Name: "title", Type: "TEXT"}}}}

	specs := m.allFieldSpecs()

	require.Len(t, specs, 3)
	require.Equal(t, "extracted_id", specs[0].Name)
	require.Equal(t, "extracted_datetime", specs[1].Name)
	require.Equal(t, "title", specs[2].Name)
}
