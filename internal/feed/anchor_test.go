package feed

import (
	"math/rand"
	"testing"

	"github.com/pribylovaa/go-review-desk/internal/models"
	"github.com/stretchr/testify/require"
)

func TestListViewport_ClampAndFirstVisible(t *testing.T) {
	t.Parallel()

	v := NewListViewport(100)
	require.Equal(t, -1, v.FirstVisible())

	v.Reset(50, 50, 50, 50)
	require.Equal(t, 200.0, v.ScrollHeight())
	require.Equal(t, 4, v.Rows())

	v.SetScrollTop(1000)
	require.Equal(t, 100.0, v.ScrollTop())
	require.Equal(t, 2, v.FirstVisible())

	v.SetScrollTop(-5)
	require.Equal(t, 0.0, v.ScrollTop())
	require.Equal(t, 0, v.FirstVisible())

	v.Append(30)
	SnapToBottom(v)
	require.Equal(t, 130.0, v.ScrollTop())

	v.SetClientHeight(500)
	require.Equal(t, 0.0, v.ScrollTop())
}

// TestPrependPreservingAnchor_ShiftsByAddedHeight — после prepend k записей высотой h
// смещение растёт ровно на h, первая видимая запись не меняется.
func TestPrependPreservingAnchor_ShiftsByAddedHeight(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		v := NewListViewport(float64(100 + rng.Intn(400)))

		// Содержимое выше видимой области: иначе прокрутки нет и смещение зажато в 0.
		var rows []float64
		var total float64
		for n := 1 + rng.Intn(60); len(rows) < n || total <= v.ClientHeight(); {
			h := float64(20 + rng.Intn(200))
			rows = append(rows, h)
			total += h
		}
		v.Reset(rows...)
		SnapToBottom(v)
		v.SetScrollTop(v.ScrollTop() * rng.Float64())

		before := v.ScrollTop()
		firstBefore := v.FirstVisible()

		added := make([]float64, 1+rng.Intn(50))
		var h float64
		for j := range added {
			added[j] = float64(20 + rng.Intn(200))
			h += added[j]
		}

		PrependPreservingAnchor(v, func() { v.Prepend(added...) })

		require.InDelta(t, before+h, v.ScrollTop(), 1e-9)
		require.Equal(t, firstBefore+len(added), v.FirstVisible())
	}
}

func TestAnchor_RestoreOnForeignViewport(t *testing.T) {
	t.Parallel()

	v := &fakeViewport{top: 40, height: 400, client: 100}
	a := CaptureAnchor(v)
	v.height += 250
	a.Restore(v)
	require.Equal(t, 290.0, v.top)
}

type fakeViewport struct {
	top, height, client float64
}

func (f *fakeViewport) ScrollTop() float64       { return f.top }
func (f *fakeViewport) ScrollHeight() float64    { return f.height }
func (f *fakeViewport) ClientHeight() float64    { return f.client }
func (f *fakeViewport) SetScrollTop(top float64) { f.top = top }

func TestDefaultLayout(t *testing.T) {
	t.Parallel()

	require.Equal(t, 44.0, DefaultLayout(models.HistoryRecord{Text: "one line"}))
	require.Equal(t, 64.0, DefaultLayout(models.HistoryRecord{Text: "a\nb"}))
	require.Equal(t, 224.0, DefaultLayout(models.HistoryRecord{Text: "x", Attachments: []string{"p.png"}}))

	hs := Layout(DefaultLayout).Heights([]models.HistoryRecord{{Text: "a"}, {Text: "a\nb\nc"}})
	require.Equal(t, []float64{44, 84}, hs)
}
