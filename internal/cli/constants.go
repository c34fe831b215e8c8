package cli

const (
	// TabWidth is the padding between table columns.
	TabWidth = 2
	// progressSteps is how many progress lines a download prints at most.
	progressSteps = 10
	// notAvailable fills table cells without a value.
	notAvailable = "-"
)
