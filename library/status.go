package library

// The functions below encode the circulation lifecycle:
//
//	AVAILABLE_FOR_BORROW -borrow-> BORROWING -return-> ORGANIZING -shelve-> AVAILABLE_FOR_BORROW
//	any state except LOST -lost-> LOST
//
// Each returns the status the book moves to, or the domain error that
// refuses the move. None of them touch storage.

// CheckBorrow validates lending a book out.
func CheckBorrow(current BookStatus) (BookStatus, error) {
	switch current {
	case StatusAvailable:
		return StatusBorrowing, nil
	case StatusBorrowing:
		return current, ErrAlreadyBorrowed
	case StatusOrganizing:
		return current, ErrBeingOrganized
	default:
		return current, ErrLost
	}
}

// CheckReturn validates taking a borrowed book back. Returned books are
// shelved through ORGANIZING before they can be lent again.
func CheckReturn(current BookStatus) (BookStatus, error) {
	switch current {
	case StatusBorrowing:
		return StatusOrganizing, nil
	case StatusAvailable:
		return current, ErrAvailableForBorrow
	case StatusOrganizing:
		return current, ErrBeingOrganized
	default:
		return current, ErrLost
	}
}

// CheckShelve validates putting an organized book back on the shelf.
func CheckShelve(current BookStatus) (BookStatus, error) {
	if current == StatusOrganizing {
		return StatusAvailable, nil
	}
	if current == StatusLost {
		return current, ErrLost
	}
	return current, ErrNotOrganizing
}

// CheckLost validates reporting a book as lost. LOST is terminal.
func CheckLost(current BookStatus) (BookStatus, error) {
	if current == StatusLost {
		return current, ErrAlreadyLost
	}
	return StatusLost, nil
}
