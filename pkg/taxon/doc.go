// Package taxon classifies free-text descriptions into a two-level
// taxonomy: a Level-1 category and, when the category has one, a Level-2
// sub-category predicted by that category's own model.
//
// Quick start:
//
//	t, err := taxon.New(taxon.WithModelDir("models/"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Close()
//
//	p := t.Classify("Network outage since 9am!")
//	fmt.Println(p.Level1, p.Level2) // Technical Network Outage
//
// Classification never fails for a single text. When a level cannot be
// resolved the Prediction carries one of the sentinel labels
// (Level1Unknown, Level2Unknown, NoSubCategory) and a matching Status.
//
// A Taxon is safe for concurrent use. Create once, reuse across requests.
package taxon
