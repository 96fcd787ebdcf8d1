package pipeline

// State is the position of a document in the conversion.
type State int

const (
	StateRaw State = iota
	StatePartitioned
	StatePayloadWrapped
	StatePlaced
	StateRenamed
	StateLinksClassified
	StateXrefsResolved
	StateAssetsAssembled
	StateCleaned
	StateFinal
)

var stateNames = [...]string{
	StateRaw:             "RAW",
	StatePartitioned:     "PARTITIONED",
	StatePayloadWrapped:  "PAYLOAD_WRAPPED",
	StatePlaced:          "PLACED",
	StateRenamed:         "RENAMED",
	StateLinksClassified: "LINKS_CLASSIFIED",
	StateXrefsResolved:   "XREFS_RESOLVED",
	StateAssetsAssembled: "ASSETS_ASSEMBLED",
	StateCleaned:         "CLEANED",
	StateFinal:           "FINAL",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}
