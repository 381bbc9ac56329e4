package lead

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func sampleLeads() []Customer {
	return []Customer{
		{ID: 1, FullName: "Budi Santoso", Job: "technician", Score: ptr(0.82)},
		{ID: 2, FullName: "Siti Aminah", Job: "teacher", Score: ptr(0.61)},
		{ID: 3, FullName: "Budiarto Wibowo", Job: "manager", Score: ptr(0.43)},
		{ID: 4, FullName: "Agus Salim", Job: "technician"},
		{ID: 5, FullName: "Dewi Lestari", Job: "budget analyst", Score: ptr(0.77)},
	}
}

func TestFilterSearchAndBand(t *testing.T) {
	t.Parallel()

	leads := sampleLeads()

	// "Budi" + High keeps only scored matches at or above 0.75.
	got := Filter(leads, "Budi", High, false)
	require.Len(t, got, 1)
	require.Equal(t, int64(1), got[0].ID)

	// Search alone matches names, case-insensitive.
	all := Filter(leads, "budi", Pending, true)
	require.Len(t, all, 2) // Budi Santoso, Budiarto Wibowo

	// Job text matches too.
	tech := Filter(leads, "TECH", Pending, true)
	require.Len(t, tech, 2)
	require.Equal(t, int64(1), tech[0].ID)
	require.Equal(t, int64(4), tech[1].ID)
	t.Log("substring search hits name and job")

	// Band alone.
	medium := Filter(leads, "", Medium, false)
	require.Len(t, medium, 1)
	require.Equal(t, int64(2), medium[0].ID)
}

func TestFilterPendingBandExcludesScored(t *testing.T) {
	t.Parallel()

	leads := sampleLeads()
	pending := Filter(leads, "", Pending, false)
	require.Len(t, pending, 1)
	require.Equal(t, int64(4), pending[0].ID)

	// The unscored customer never appears in a score band.
	for _, band := range []Band{Low, Medium, High} {
		for _, c := range Filter(leads, "", band, false) {
			require.NotEqual(t, int64(4), c.ID)
		}
	}

	require.Equal(t, pending, PendingOnly(leads))
}

func TestRankBySearch(t *testing.T) {
	t.Parallel()

	leads := []Customer{
		{ID: 1, FullName: "Budiarto Wibowo"},
		{ID: 2, FullName: "Budi Santoso"},
		{ID: 3, FullName: "Budi"},
	}
	RankBySearch(leads, "budi")
	require.Equal(t, int64(3), leads[0].ID)
	require.Equal(t, int64(2), leads[1].ID)
	require.Equal(t, int64(1), leads[2].ID)

	// Empty query preserves order.
	unranked := []Customer{{ID: 9}, {ID: 1}}
	RankBySearch(unranked, "  ")
	require.Equal(t, int64(9), unranked[0].ID)
}

func TestFormatBalance(t *testing.T) {
	t.Parallel()

	require.Equal(t, "N/A", FormatBalance(nil, "$"))
	require.Equal(t, "N/A", FormatBalance(ptr(0), "$"))
	require.Equal(t, "$1,250.50", FormatBalance(ptr(1250.5), "$"))
	require.Equal(t, "-$300.00", FormatBalance(ptr(-300), "$"))
	require.Equal(t, "Rp2,000,000.00", FormatBalance(ptr(2000000), "Rp"))
}

func TestFormatScore(t *testing.T) {
	t.Parallel()

	require.Equal(t, "—", FormatScore(nil))
	require.Equal(t, "81.0%", FormatScore(ptr(0.81)))
}
