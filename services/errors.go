package services

// RequestError is a domain failure that maps to a stable client error code.
// Handlers translate it into the HTTP response; everything else is a 500.
type RequestError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

var (
	ErrInsufficientFunds = &RequestError{Status: 400, Code: "not_enough_kinetics", Message: "not enough kinetics"}
	ErrAlreadyJoined     = &RequestError{Status: 400, Code: "already_joined", Message: "already joined this tournament"}
	ErrSportAlreadyAdded = &RequestError{Status: 400, Code: "sport_already_added", Message: "sport already unlocked"}
	ErrAlreadyOwned      = &RequestError{Status: 400, Code: "already_owned", Message: "accessory already owned"}
	ErrCharacterExists   = &RequestError{Status: 400, Code: "character_exists", Message: "user already has a character"}
	ErrCharacterNotFound = &RequestError{Status: 404, Code: "character_not_found", Message: "character not found"}
	ErrNotFound          = &RequestError{Status: 404, Code: "not_found", Message: "not found"}
	ErrInvalidItemType   = &RequestError{Status: 400, Code: "invalid_item_type", Message: "unknown customization item type"}
	ErrInvalidSport      = &RequestError{Status: 400, Code: "invalid_sport", Message: "unknown sport type"}
	ErrNoFields          = &RequestError{Status: 400, Code: "no_fields", Message: "no updatable fields in request"}
)
