package domain

import "errors"

var (
	ErrIllegalTransition = errors.New("illegal transition of checkout step")
	ErrNotOnConfirmStep  = errors.New("order can only be placed from the confirm step")
	ErrStepNotValidated  = errors.New("delivery and payment must be validated before placing the order")
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
)

var (
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
	ErrUnknownModel    = errors.New("unknown base model")
	ErrUnknownMaterial = errors.New("unknown material")
)
