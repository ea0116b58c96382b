package intelligence

// Item is one extracted finding. Only Title and Content are guaranteed;
// Level accompanies risks and Date accompanies deadlines when the model
// supplies them.
type Item struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Level   string `json:"level,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Extraction is the structured output of a knowledge-extraction call.
// A malformed model response parses to the zero Extraction.
type Extraction struct {
	Obligations []Item `json:"obligations"`
	Deadlines   []Item `json:"deadlines"`
	Risks       []Item `json:"risks"`
	Metrics     []Item `json:"metrics"`
}

// Empty reports whether the extraction carries no items at all.
func (e Extraction) Empty() bool {
	return len(e.Obligations) == 0 &&
		len(e.Deadlines) == 0 &&
		len(e.Risks) == 0 &&
		len(e.Metrics) == 0
}
