package tree_test

import (
	"fmt"

	"github.com/jonwraymond/taxtree/taxon"
	"github.com/jonwraymond/taxtree/tree"
)

func ExampleMergeAll() {
	chains := []tree.Chain{
		{
			{ID: 48460, Name: "Life", Rank: taxon.RankRoot},
			{ID: 47158, Name: "Insecta", Rank: taxon.RankClass},
			{ID: 48097, Name: "Danaus", Rank: taxon.RankGenus},
			{ID: 48662, Name: "Danaus plexippus", Rank: taxon.RankSpecies},
		},
		{
			{ID: 48460, Name: "Life", Rank: taxon.RankRoot},
			{ID: 47158, Name: "Insecta", Rank: taxon.RankClass},
			{ID: 47219, Name: "Apis", Rank: taxon.RankGenus},
			{ID: 47220, Name: "Apis mellifera", Rank: taxon.RankSpecies},
		},
	}

	root, errs := tree.MergeAll(chains)
	fmt.Println("errors:", len(errs))
	fmt.Println("species:", len(root.Leaves()))
	for _, child := range root.Children[47158].SortedChildren() {
		fmt.Println("genus:", child.Name)
	}
	// Output:
	// errors: 0
	// species: 2
	// genus: Apis
	// genus: Danaus
}

func ExampleFilter() {
	chains := []tree.Chain{
		{
			{ID: 48460, Name: "Life", Rank: taxon.RankRoot},
			{ID: 48662, Name: "Danaus plexippus", Rank: taxon.RankSpecies},
		},
		{
			{ID: 48460, Name: "Life", Rank: taxon.RankRoot},
			{ID: 47220, Name: "Apis mellifera", Rank: taxon.RankSpecies},
		},
	}
	root, _ := tree.MergeAll(chains)

	pruned := tree.Filter(root, tree.KeepSet([]int64{48662}))
	fmt.Println("species:", len(pruned.Leaves()))
	fmt.Println("kept:", pruned.Children[48662].Name)
	// Output:
	// species: 1
	// kept: Danaus plexippus
}
