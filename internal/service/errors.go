package service

import "errors"

var (
	ErrWizardNotFound     = errors.New("checkout not found")
	ErrSubmitInProgress   = errors.New("order submission or checkout update already in progress")
	ErrOrderAlreadyPlaced = errors.New("order already placed for this checkout")
	ErrDesignNotFound     = errors.New("design not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidFilter      = errors.New("invalid filter")
)
