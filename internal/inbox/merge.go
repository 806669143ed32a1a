package inbox

import "mailsage/internal/model"

// Merge reconciles a fetched list with the pin set. IsPinned is always
// recomputed from pins; every other field passes through untouched.
func Merge(fetched []model.Email, pins PinSet) []model.Email {
	out := make([]model.Email, len(fetched))
	for i, e := range fetched {
		e.IsPinned = pins.Has(e.ID)
		out[i] = e
	}
	return out
}
