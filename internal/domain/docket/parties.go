package docket

// Parties is the recomputed party, attorney and firm set of a docket.
// These live on the parent document only.
type Parties struct {
	PartyNames    []string `json:"party,omitempty"`
	PartyIDs      []int64  `json:"party_id,omitempty"`
	AttorneyNames []string `json:"attorney,omitempty"`
	AttorneyIDs   []int64  `json:"attorney_id,omitempty"`
	FirmNames     []string `json:"firm,omitempty"`
	FirmIDs       []int64  `json:"firm_id,omitempty"`
}

// Fields returns the index patch for a party resync. Empty sets clear
// the attribute.
func (p *Parties) Fields() map[string]any {
	return map[string]any{
		"party":       strsOrNil(p.PartyNames),
		"party_id":    idsOrNil(p.PartyIDs),
		"attorney":    strsOrNil(p.AttorneyNames),
		"attorney_id": idsOrNil(p.AttorneyIDs),
		"firm":        strsOrNil(p.FirmNames),
		"firm_id":     idsOrNil(p.FirmIDs),
	}
}

func strsOrNil(s []string) any {
	if len(s) == 0 {
		return nil
	}
	return s
}

func idsOrNil(s []int64) any {
	if len(s) == 0 {
		return nil
	}
	return s
}
