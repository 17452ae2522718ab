package tree

import (
	"testing"

	"github.com/jonwraymond/taxtree/taxon"
)

// benchChains builds n species chains fanned out under a shared root.
func benchChains(n int) []Chain {
	chains := make([]Chain, n)
	for i := 0; i < n; i++ {
		kingdom := int64(10 + i%5)
		family := int64(100 + i%50)
		leaf := int64(1000 + i)
		chains[i] = Chain{
			{ID: 1, Name: "Life", Rank: taxon.RankRoot},
			{ID: kingdom, Name: "kingdom", Rank: taxon.RankKingdom},
			{ID: family, Name: "family", Rank: taxon.RankFamily},
			{ID: leaf, Name: "species", Rank: taxon.RankSpecies},
		}
	}
	return chains
}

// BenchmarkMergeAll measures folding chains into a fresh tree.
func BenchmarkMergeAll(b *testing.B) {
	chains := benchChains(500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MergeAll(chains)
	}
}

// BenchmarkFilter measures pruning a merged tree to a small leaf set.
func BenchmarkFilter(b *testing.B) {
	root, _ := MergeAll(benchChains(500))
	keep := KeepSet([]int64{1000, 1250, 1499})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Filter(root, keep)
	}
}

// BenchmarkMarshalSnapshot measures snapshot encoding.
func BenchmarkMarshalSnapshot(b *testing.B) {
	root, _ := MergeAll(benchChains(500))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MarshalSnapshot(root)
	}
}
