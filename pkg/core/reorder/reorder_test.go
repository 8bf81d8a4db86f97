package reorder

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

func events(ids ...string) []domain.TimelineEvent {
	out := make([]domain.TimelineEvent, len(ids))
	for i, id := range ids {
		out[i] = domain.TimelineEvent{ID: id, Title: id, Order: i}
	}
	return out
}

func keys[T Ordered[T]](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key()
	}
	return out
}

func TestMove(t *testing.T) {
	tests := []struct {
		name   string
		source string
		target string
		want   []string
	}{
		{name: "move down", source: "a", target: "c", want: []string{"b", "c", "a", "d"}},
		{name: "move up", source: "d", target: "b", want: []string{"a", "d", "b", "c"}},
		{name: "to front", source: "c", target: "a", want: []string{"c", "a", "b", "d"}},
		{name: "to end", source: "a", target: "d", want: []string{"b", "c", "d", "a"}},
		{name: "adjacent", source: "b", target: "c", want: []string{"a", "c", "b", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := events("a", "b", "c", "d")
			res, err := Move(in, tt.source, tt.target, 0)
			require.NoError(t, err)
			assert.True(t, res.Moved)
			assert.Equal(t, tt.want, keys(res.Items))
			for i, it := range res.Items {
				assert.Equal(t, i, it.Order, "rank of %s", it.ID)
			}
			// input untouched
			assert.Equal(t, []string{"a", "b", "c", "d"}, keys(in))
			assert.Equal(t, 0, in[0].Order)
		})
	}
}

func TestMoveNoOp(t *testing.T) {
	in := events("a", "b", "c")
	res, err := Move(in, "b", "b", 0)
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Empty(t, res.Assignments)
	assert.Empty(t, res.Changed)
	assert.Equal(t, in, res.Items)
}

func TestMoveUnknownID(t *testing.T) {
	in := events("a", "b")
	_, err := Move(in, "x", "a", 0)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = Move(in, "a", "x", 0)
	assert.True(t, domain.IsValidation(err))
}

func TestMoveDuplicateKeys(t *testing.T) {
	in := []domain.TimelineEvent{{ID: "a"}, {ID: "a"}, {ID: "b"}}
	_, err := Move(in, "a", "b", 0)
	assert.True(t, domain.IsValidation(err))
}

func TestMoveOneBased(t *testing.T) {
	groups := []domain.GroupView{
		{Name: "Music", Order: 1},
		{Name: "Socials", Order: 2},
		{Name: "Work", Order: 3},
	}
	res, err := Move(groups, "Work", "Music", domain.GroupOrderBase)
	require.NoError(t, err)
	assert.Equal(t, []domain.OrderUpdate{
		{ID: "Work", Order: 1},
		{ID: "Music", Order: 2},
		{ID: "Socials", Order: 3},
	}, res.Assignments)
	assert.Len(t, res.Changed, 3)
}

func TestMoveChangedOnlyListsRankChanges(t *testing.T) {
	in := events("a", "b", "c", "d")
	res, err := Move(in, "b", "c", 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.OrderUpdate{{ID: "c", Order: 1}, {ID: "b", Order: 2}}, res.Changed)
	assert.Len(t, res.Assignments, 4)
}

func TestMovePermutationProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		n := 2 + rng.Intn(12)
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("e%d", i)
		}
		in := events(ids...)
		// gaps and arbitrary starting ranks must not matter
		for i := range in {
			in[i].Order = i*3 + rng.Intn(3)
		}
		src := ids[rng.Intn(n)]
		dst := ids[rng.Intn(n)]
		if src == dst {
			continue
		}

		res, err := Move(in, src, dst, 0)
		require.NoError(t, err)
		require.Len(t, res.Items, n)

		got := keys(res.Items)
		sort.Strings(got)
		want := append([]string(nil), ids...)
		sort.Strings(want)
		require.Equal(t, want, got)

		for i, it := range res.Items {
			require.Equal(t, i, it.Order)
		}
		require.Equal(t, dst, keys(in)[indexOf(res.Items, src)])
	}
}

func links() []domain.Link {
	return []domain.Link{
		{ID: "A", Group: "Music", Order: 0},
		{ID: "C", Group: "Work", Order: 0},
		{ID: "B", Group: "Music", Order: 1},
	}
}

func TestMoveInScope(t *testing.T) {
	res, err := MoveInScope(links(), "B", "A", domain.LinkOrderBase)
	require.NoError(t, err)
	require.True(t, res.Moved)

	// B takes A's slot, C keeps its slot and rank
	assert.Equal(t, []string{"B", "C", "A"}, keys(res.Items))
	byID := map[string]domain.Link{}
	for _, l := range res.Items {
		byID[l.ID] = l
	}
	assert.Equal(t, 0, byID["B"].Order)
	assert.Equal(t, 1, byID["A"].Order)
	assert.Equal(t, 0, byID["C"].Order)
	assert.Equal(t, "Work", byID["C"].Group)

	assert.Equal(t, []domain.OrderUpdate{{ID: "B", Order: 0}, {ID: "A", Order: 1}}, res.Assignments)
}

func TestMoveInScopeRejectsCrossScope(t *testing.T) {
	in := links()
	res, err := MoveInScope(in, "A", "C", domain.LinkOrderBase)
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Empty(t, res.Assignments)
	assert.Equal(t, in, res.Items)
	assert.Equal(t, "Music", res.Items[0].Group)
}

func TestRenumberAndSort(t *testing.T) {
	in := []domain.TimelineEvent{{ID: "x", Order: 7}, {ID: "y", Order: 2}, {ID: "z", Order: 2}}
	sorted := SortByRank(in)
	assert.Equal(t, []string{"y", "z", "x"}, keys(sorted))

	res := Renumber(sorted, 0)
	assert.Equal(t, []domain.OrderUpdate{{ID: "y", Order: 0}, {ID: "z", Order: 1}, {ID: "x", Order: 2}}, res.Assignments)
	assert.Equal(t, 7, in[0].Order)
}
