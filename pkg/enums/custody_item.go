package enums

import "fmt"

// KeyType identifies which physical key a custody movement refers to.
type KeyType string

const (
	KeyTypeFirstKey  KeyType = "first_key"
	KeyTypeSecondKey KeyType = "second_key"
	KeyTypeCardKey   KeyType = "card_key"
)

var validKeyTypes = []KeyType{
	KeyTypeFirstKey,
	KeyTypeSecondKey,
	KeyTypeCardKey,
}

func (k KeyType) String() string {
	return string(k)
}

func (k KeyType) IsValid() bool {
	for _, candidate := range validKeyTypes {
		if candidate == k {
			return true
		}
	}
	return false
}

func ParseKeyType(value string) (KeyType, error) {
	for _, candidate := range validKeyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid key type %q", value)
}

// DocumentType identifies which vehicle document a custody movement refers to.
type DocumentType string

const (
	DocumentTypeTechnicalSheet    DocumentType = "technical_sheet"
	DocumentTypeCirculationPermit DocumentType = "circulation_permit"
)

var validDocumentTypes = []DocumentType{
	DocumentTypeTechnicalSheet,
	DocumentTypeCirculationPermit,
}

func (d DocumentType) String() string {
	return string(d)
}

func (d DocumentType) IsValid() bool {
	for _, candidate := range validDocumentTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

func ParseDocumentType(value string) (DocumentType, error) {
	for _, candidate := range validDocumentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document type %q", value)
}
