package taxonomy

import "github.com/jackzampolin/draftly/internal/types"

var (
	ndaPatterns = map[types.ClauseType]Patterns{
		types.ClauseConfidentiality: {
			Heading: rx(`confidential`, `non[-\s]?disclosure`),
			Must:    rx(`confidential`, `non[-\s]?disclosure`),
			Should:  rx(`use.*solely|purpose`, `third[-\s]?part(y|ies)`, `discloser|recipient`),
		},
		types.ClauseExceptions: {
			Heading: rx(`exception`, `exclusion`),
			Must:    rx(`public`, `already\s+known|prior\s+knowledge`, `required\s+by\s+law|legal`),
			Should:  rx(`independent(ly)?\s+develop(ed)?`),
		},
		types.ClauseReturnDestroy: {
			Heading: rx(`return`, `destroy`, `return\s+and\s+destr(oy|uction)`),
			Must:    rx(`return`, `destroy`),
			Should:  rx(`upon\s+(request|termination)`, `copies|materials|documents`, `certif(y|ication)`),
		},
		types.ClauseInjunctiveRelief: {
			Heading: rx(`injunctive`, `equitable`, `specific\s+performance`),
			Must:    rx(`irreparable\s+harm`, `injunctive|equitable`),
			Should:  rx(`without\s+posting\s+bond`),
		},
		types.ClauseGoverningLaw: {
			Heading: rx(`governing\s+law`, `choice\s+of\s+law`, `applicable\s+law`, `jurisdiction`),
			Must:    rx(`law`, `jurisdiction`, `state\s+of|laws\s+of`),
		},
	}

	ndaChecklists = map[types.ClauseType]Checklist{
		types.ClauseConfidentiality: {
			{Text: "Defines what constitutes Confidential Information"},
			{Text: "Obligates the recipient not to disclose Confidential Information"},
			{Text: "Restricts use of Confidential Information to the stated purpose"},
			{Text: "Sets a standard of care for protecting the information", Optional: true},
			{Text: "States the duration of the confidentiality obligation", Optional: true},
		},
		types.ClauseExceptions: {
			{Text: "Excludes information that is or becomes publicly available"},
			{Text: "Excludes information already known to the recipient"},
			{Text: "Excludes information independently developed by the recipient"},
			{Text: "Excludes information received from a third party without restriction", Optional: true},
			{Text: "Permits disclosure required by law or court order", Optional: true},
		},
		types.ClauseReturnDestroy: {
			{Text: "Requires return or destruction of Confidential Information on request or termination"},
			{Text: "Covers copies, notes and other materials containing Confidential Information"},
			{Text: "Requires written certification of return or destruction", Optional: true},
		},
		types.ClauseInjunctiveRelief: {
			{Text: "Acknowledges that a breach may cause irreparable harm"},
			{Text: "Entitles the disclosing party to injunctive or other equitable relief"},
			{Text: "Allows relief without posting a bond", Optional: true},
		},
		types.ClauseGoverningLaw: {
			{Text: "Identifies the governing law or jurisdiction"},
			{Text: "Specifies the venue or courts for disputes", Optional: true},
		},
	}
)

func nda() *Taxonomy {
	t := &Taxonomy{DocType: DefaultDocType}
	for _, ct := range types.ClauseTypes {
		t.Clauses = append(t.Clauses, Clause{
			Type:      ct,
			Patterns:  ndaPatterns[ct],
			Checklist: ndaChecklists[ct],
		})
	}
	return t
}
