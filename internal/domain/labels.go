package domain

// Deal-quality classes, ordered best to worst. The set is closed: the
// classifiers are declared with exactly these classes on every update.
const (
	RatingIncredible = "Incredible Deal"
	RatingGreat      = "Great Deal"
	RatingGood       = "Good Deal"
	RatingFair       = "Fair Price"
	RatingSlightly   = "Slightly Overpriced"
	RatingOverpriced = "Overpriced"
)

// DealClasses is the closed label set of the deal classifier.
var DealClasses = []string{
	RatingIncredible,
	RatingGreat,
	RatingGood,
	RatingFair,
	RatingSlightly,
	RatingOverpriced,
}

// Interest classes.
const (
	InterestYes     = "Interested"
	InterestNeutral = "Neutral"
	InterestNo      = "Not Interested"
)

// InterestClasses is the closed label set of the interest classifier.
var InterestClasses = []string{InterestYes, InterestNeutral, InterestNo}

// Sentinel ratings for missing signal. These are results, not errors.
const (
	RatingUnknownPrice = "Unknown Price"
	RatingNoData       = "No Data"
	RatingNoPriceData  = "No Price Data"
	RatingFree         = "Free?"
	InterestUnknown    = "Unknown"
)
