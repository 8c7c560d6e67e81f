package nlp

import "strings"

// EntityType is the label of a named entity span. The set is closed;
// labels a recognizer produces outside it map to Misc.
type EntityType string

const (
	Person    EntityType = "PERSON"
	NORP      EntityType = "NORP"
	Facility  EntityType = "FAC"
	Org       EntityType = "ORG"
	GPE       EntityType = "GPE"
	Location  EntityType = "LOC"
	Product   EntityType = "PRODUCT"
	Event     EntityType = "EVENT"
	WorkOfArt EntityType = "WORK_OF_ART"
	Law       EntityType = "LAW"
	Language  EntityType = "LANGUAGE"
	Date      EntityType = "DATE"
	Time      EntityType = "TIME"
	Percent   EntityType = "PERCENT"
	Money     EntityType = "MONEY"
	Quantity  EntityType = "QUANTITY"
	Ordinal   EntityType = "ORDINAL"
	Cardinal  EntityType = "CARDINAL"
	Norm      EntityType = "NORM"
	Misc      EntityType = "MISC"
)

var entityTypes = map[EntityType]bool{
	Person: true, NORP: true, Facility: true, Org: true, GPE: true,
	Location: true, Product: true, Event: true, WorkOfArt: true, Law: true,
	Language: true, Date: true, Time: true, Percent: true, Money: true,
	Quantity: true, Ordinal: true, Cardinal: true, Norm: true, Misc: true,
}

// ParseEntityType maps a recognizer label onto the closed set.
func ParseEntityType(label string) EntityType {
	t := EntityType(strings.ToUpper(strings.TrimSpace(label)))
	switch t {
	case "PER":
		return Person
	case "ORGANIZATION":
		return Org
	case "LOCATION":
		return Location
	}
	if entityTypes[t] {
		return t
	}
	return Misc
}

// Entity is a typed span of text found in a sentence.
type Entity struct {
	Text string     `json:"text" yaml:"text"`
	Type EntityType `json:"type" yaml:"type"`
}
