// Package checkout implements the checkout wizard: a linear state machine
// Shipping → Payment → Review → Confirmation with Submitting and Error
// sub-states, holding the order draft until submission succeeds.
package checkout

import (
	"errors"
	"strings"
	"sync"
	"time"

	"storefront/internal/coupon"
	"storefront/internal/model"
	"storefront/internal/validation"
)

// State is a wizard phase.
type State string

const (
	StateShipping     State = "shipping"
	StatePayment      State = "payment"
	StateReview       State = "review"
	StateSubmitting   State = "submitting"
	StateConfirmation State = "confirmation"
	StateError        State = "error"
)

// Step names accepted by Edit.
const (
	StepShipping = "shipping"
	StepPayment  = "payment"
)

// View is a point-in-time copy of a wizard.
type View struct {
	State     State             `json:"state"`
	Draft     *model.OrderDraft `json:"draft,omitempty"`
	CanSubmit bool              `json:"can_submit"`
	LastError string            `json:"last_error,omitempty"`
	Order     *model.Order      `json:"order,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Wizard is safe for concurrent use. Network calls are never made while
// its lock is held; Submit is split into BeginSubmit and CompleteSubmit.
type Wizard struct {
	mu        sync.Mutex
	state     State
	draft     model.OrderDraft
	percent   int
	lastErr   error
	order     *model.Order
	updatedAt time.Time
}

// NewWizard starts a wizard from a cart snapshot. Standard shipping is
// preselected.
func NewWizard(cart *model.Cart) (*Wizard, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, model.ErrEmptyCart
	}

	items := make([]model.CartItem, len(cart.Items))
	copy(items, cart.Items)

	w := &Wizard{
		state: StateShipping,
		draft: model.OrderDraft{
			Items:          items,
			Subtotal:       roundCents(cart.Subtotal),
			ShippingMethod: model.ShippingStandard,
			ShippingFee:    StandardShippingFee,
		},
		updatedAt: time.Now().UTC(),
	}
	w.recompute()
	return w, nil
}

// State returns the current phase.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Snapshot returns a copy of the wizard's state.
func (w *Wizard) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view()
}

// SubmitShipping validates addr and advances Shipping → Payment. On
// validation failure the state is unchanged.
func (w *Wizard) SubmitShipping(addr model.ShippingAddress) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateShipping {
		return w.view(), model.ErrInvalidTransition
	}

	addr = normaliseAddress(addr)
	if err := validation.Struct(addr); err != nil {
		return w.view(), err
	}

	w.draft.Shipping = addr
	w.transition(StatePayment)
	return w.view(), nil
}

// SelectShippingMethod changes the shipping method and recomputes totals.
// It is allowed in any phase before submission.
func (w *Wizard) SelectShippingMethod(m model.ShippingMethod) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.editable() {
		return w.view(), model.ErrInvalidTransition
	}

	fee, err := ShippingFee(m)
	if err != nil {
		return w.view(), err
	}

	w.draft.ShippingMethod = m
	w.draft.ShippingFee = fee
	w.recompute()
	w.touch()
	return w.view(), nil
}

// SubmitPayment checks sel and advances Payment → Review. Only the presence
// of the method's detail keys is checked.
func (w *Wizard) SubmitPayment(sel model.PaymentSelection) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StatePayment {
		return w.view(), model.ErrInvalidTransition
	}

	if !sel.Method.Valid() {
		return w.view(), model.ErrUnknownPaymentMethod
	}

	details := make(map[string]string, len(sel.Details))
	for k, v := range sel.Details {
		details[k] = strings.TrimSpace(v)
	}

	missing := map[string]string{}
	for _, key := range sel.Method.RequiredDetails() {
		if details[key] == "" {
			missing["details."+key] = "is required"
		}
	}
	if len(missing) > 0 {
		return w.view(), &model.ValidationError{Fields: missing}
	}

	w.draft.Payment = model.PaymentSelection{Method: sel.Method, Details: details}
	w.transition(StateReview)
	return w.view(), nil
}

// ApplyPromo applies a resolved promotion, replacing any earlier one.
func (w *Wizard) ApplyPromo(p coupon.Promotion) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.editable() {
		return w.view(), model.ErrInvalidTransition
	}

	w.draft.PromoCode = p.Code
	w.percent = p.Percent
	w.recompute()
	w.touch()
	return w.view(), nil
}

// RemovePromo drops the applied promotion, if any.
func (w *Wizard) RemovePromo() (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.editable() {
		return w.view(), model.ErrInvalidTransition
	}

	w.draft.PromoCode = ""
	w.percent = 0
	w.recompute()
	w.touch()
	return w.view(), nil
}

// Back moves one phase backwards. Error counts as Review.
func (w *Wizard) Back() (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StatePayment:
		w.transition(StateShipping)
	case StateReview, StateError:
		w.transition(StatePayment)
	default:
		return w.view(), model.ErrInvalidTransition
	}
	return w.view(), nil
}

// Edit jumps back to an earlier step, keeping every draft field.
func (w *Wizard) Edit(step string) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.editable() {
		return w.view(), model.ErrInvalidTransition
	}

	switch step {
	case StepShipping:
		w.transition(StateShipping)
	case StepPayment:
		if w.state == StateShipping {
			return w.view(), model.ErrInvalidTransition
		}
		w.transition(StatePayment)
	default:
		return w.view(), model.ErrInvalidTransition
	}
	return w.view(), nil
}

// BeginSubmit moves Review (or Error) → Submitting and returns the order
// request to send. A second call while Submitting fails with
// model.ErrSubmissionInProgress.
func (w *Wizard) BeginSubmit() (model.CheckoutRequest, model.OrderDraft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateReview, StateError:
	case StateSubmitting:
		return model.CheckoutRequest{}, model.OrderDraft{}, model.ErrSubmissionInProgress
	default:
		return model.CheckoutRequest{}, model.OrderDraft{}, model.ErrInvalidTransition
	}

	w.lastErr = nil
	w.transition(StateSubmitting)

	addr := w.draft.Shipping
	req := model.CheckoutRequest{
		ShippingAddress: model.CheckoutAddress{
			FullName:    addr.FullName,
			PhoneNumber: addr.Phone,
			Email:       addr.Email,
			Address:     addr.AddressLine,
			City:        addr.City,
			Province:    addr.Province,
			PostalCode:  addr.PostalCode,
		},
		PaymentMethod: string(w.draft.Payment.Method),
	}
	return req, cloneDraft(w.draft), nil
}

// errMissingOrder is recorded when the backend accepts a checkout without
// returning an order.
var errMissingOrder = errors.New("order confirmation carried no order")

// CompleteSubmit records the outcome of a submission. A confirmed order
// with a non-zero ID moves to Confirmation and discards the draft;
// anything else moves to Error with the draft intact.
func (w *Wizard) CompleteSubmit(order *model.Order, err error) View {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSubmitting {
		return w.view()
	}

	if err == nil && (order == nil || order.ID == 0) {
		err = errMissingOrder
	}

	if err != nil {
		w.lastErr = err
		w.transition(StateError)
		return w.view()
	}

	o := *order
	w.order = &o
	w.draft = model.OrderDraft{}
	w.percent = 0
	w.transition(StateConfirmation)
	return w.view()
}

// editable reports whether draft edits are allowed. The caller holds w.mu.
func (w *Wizard) editable() bool {
	switch w.state {
	case StateShipping, StatePayment, StateReview, StateError:
		return true
	default:
		return false
	}
}

func (w *Wizard) transition(to State) {
	w.state = to
	w.touch()
}

func (w *Wizard) touch() {
	w.updatedAt = time.Now().UTC()
}

// recompute derives discount and total from the draft. The caller holds w.mu.
func (w *Wizard) recompute() {
	w.draft.Discount = coupon.Promotion{Percent: w.percent}.Discount(w.draft.Subtotal)
	w.draft.Total = Total(w.draft.Subtotal, w.draft.Discount, w.draft.ShippingFee)
}

// view builds a View. The caller holds w.mu.
func (w *Wizard) view() View {
	v := View{
		State:     w.state,
		CanSubmit: w.state == StateReview || w.state == StateError,
		UpdatedAt: w.updatedAt,
	}
	if w.state != StateConfirmation {
		d := cloneDraft(w.draft)
		v.Draft = &d
	}
	if w.lastErr != nil {
		v.LastError = w.lastErr.Error()
	}
	if w.order != nil {
		o := *w.order
		v.Order = &o
	}
	return v
}

func cloneDraft(d model.OrderDraft) model.OrderDraft {
	c := d
	c.Items = append([]model.CartItem(nil), d.Items...)
	if d.Payment.Details != nil {
		c.Payment.Details = make(map[string]string, len(d.Payment.Details))
		for k, v := range d.Payment.Details {
			c.Payment.Details[k] = v
		}
	}
	return c
}

func normaliseAddress(a model.ShippingAddress) model.ShippingAddress {
	return model.ShippingAddress{
		FullName:    strings.TrimSpace(a.FullName),
		Phone:       strings.TrimSpace(a.Phone),
		Email:       strings.TrimSpace(a.Email),
		AddressLine: strings.TrimSpace(a.AddressLine),
		City:        strings.TrimSpace(a.City),
		Province:    strings.TrimSpace(a.Province),
		PostalCode:  strings.TrimSpace(a.PostalCode),
	}
}
