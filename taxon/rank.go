package taxon

// Rank is a level in the taxonomic hierarchy. Ranks are totally ordered:
// RankRoot < RankKingdom < ... < RankSpecies. The order is used for
// deterministic child sorting and for validating ancestor chains.
type Rank int

const (
	// RankRoot is the universal root level. The upstream vocabulary calls
	// this level "stateofmatter".
	RankRoot Rank = iota
	RankKingdom
	RankPhylum
	RankClass
	RankOrder
	RankFamily
	RankGenus
	// RankSpecies is the maximal rank; species are the leaves of every tree.
	RankSpecies
)

// MaxDepth is the number of rank levels, and therefore the maximum depth of
// any taxonomy tree. Recursive tree walks are bounded by this ceiling.
const MaxDepth = 8

// RootTaxonID is the conventional universal root taxon ("Life") used as the
// default tree root when a caller does not scope the request.
const RootTaxonID = 48460

// rankNames maps ranks to their canonical names.
var rankNames = [MaxDepth]string{
	"stateofmatter",
	"kingdom",
	"phylum",
	"class",
	"order",
	"family",
	"genus",
	"species",
}

// String returns the canonical rank name.
func (r Rank) String() string {
	if !r.Valid() {
		return "unknown"
	}
	return rankNames[r]
}

// Valid reports whether the rank is one of the defined levels.
func (r Rank) Valid() bool {
	return r >= RankRoot && r <= RankSpecies
}

// ParseRank parses a rank name as supplied by the remote source.
// "root" is accepted as an alias for the universal root level.
func ParseRank(s string) (Rank, error) {
	switch s {
	case "stateofmatter", "root":
		return RankRoot, nil
	case "kingdom":
		return RankKingdom, nil
	case "phylum":
		return RankPhylum, nil
	case "class":
		return RankClass, nil
	case "order":
		return RankOrder, nil
	case "family":
		return RankFamily, nil
	case "genus":
		return RankGenus, nil
	case "species":
		return RankSpecies, nil
	default:
		return 0, ErrUnknownRank
	}
}
