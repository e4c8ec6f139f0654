package checkout

import "errors"

var (
	ErrPlanNotBillable = errors.New("plan has no recurring billing")
	ErrNoCheckoutURL   = errors.New("no checkout URL returned from provider")
	ErrNoPortalAccess  = errors.New("account has no provider customer to manage")
)
