// Package restock models the three-step restock conversation:
// button press, product select, variant select, then a stock form.
//
// The conversation keeps no server-side memory. Each step's State is encoded
// into the custom id of the component that advances it, and decoded again when
// Discord delivers the next interaction.
package restock

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownState = errors.New("restock: unknown state")
	ErrTerminal     = errors.New("restock: flow already submitted")
	ErrInvalidID    = errors.New("restock: invalid id")
)

const (
	prefix      = "restock"
	sep         = ":"
	maxCustomID = 100
)

type Stage string

const (
	StagePanel     Stage = "panel"
	StageProduct   Stage = "product"
	StageVariant   Stage = "variant"
	StageStock     Stage = "stock"
	StageSubmitted Stage = "submitted"
)

// State is one step of the flow. Next consumes the input delivered by the
// step's component and returns the following state.
type State interface {
	Stage() Stage
	Next(input string) (State, error)
}

// Panel is the stock panel with its Restock button.
type Panel struct{}

func (Panel) Stage() Stage { return StagePanel }

func (Panel) Next(string) (State, error) { return ProductMenu{}, nil }

// ProductMenu waits for a product to be picked.
type ProductMenu struct{}

func (ProductMenu) Stage() Stage { return StageProduct }

func (ProductMenu) Next(productID string) (State, error) {
	if err := validID(productID); err != nil {
		return nil, err
	}
	return ProductChosen{ProductID: productID}, nil
}

// ProductChosen waits for a variant of ProductID to be picked.
type ProductChosen struct {
	ProductID string
}

func (ProductChosen) Stage() Stage { return StageVariant }

func (s ProductChosen) Next(variantID string) (State, error) {
	if err := validID(variantID); err != nil {
		return nil, err
	}
	return VariantChosen{ProductID: s.ProductID, VariantID: variantID}, nil
}

// VariantChosen waits for the stock form.
type VariantChosen struct {
	ProductID string
	VariantID string
}

func (VariantChosen) Stage() Stage { return StageStock }

func (s VariantChosen) Next(text string) (State, error) {
	return Submission{VariantChosen: s, Items: ParseItems(text)}, nil
}

// Submission is terminal: the items to append to one variant.
type Submission struct {
	VariantChosen
	Items []string
}

func (Submission) Stage() Stage { return StageSubmitted }

func (Submission) Next(string) (State, error) { return nil, ErrTerminal }

// IsCustomID reports whether a component custom id belongs to this flow.
func IsCustomID(customID string) bool {
	return strings.HasPrefix(customID, prefix+sep)
}

// Encode renders s as a component custom id.
func Encode(s State) (string, error) {
	var parts []string
	switch st := s.(type) {
	case Panel:
		parts = []string{string(StagePanel)}
	case ProductMenu:
		parts = []string{string(StageProduct)}
	case ProductChosen:
		if err := validID(st.ProductID); err != nil {
			return "", err
		}
		parts = []string{string(StageVariant), st.ProductID}
	case VariantChosen:
		if err := validID(st.ProductID); err != nil {
			return "", err
		}
		if err := validID(st.VariantID); err != nil {
			return "", err
		}
		parts = []string{string(StageStock), st.ProductID, st.VariantID}
	case Submission:
		return "", ErrTerminal
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownState, s)
	}

	id := prefix + sep + strings.Join(parts, sep)
	if len(id) > maxCustomID {
		return "", fmt.Errorf("%w: custom id exceeds %d chars", ErrInvalidID, maxCustomID)
	}
	return id, nil
}

// Decode parses a custom id produced by Encode.
func Decode(customID string) (State, error) {
	if !IsCustomID(customID) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownState, customID)
	}
	parts := strings.Split(strings.TrimPrefix(customID, prefix+sep), sep)

	switch Stage(parts[0]) {
	case StagePanel:
		if len(parts) == 1 {
			return Panel{}, nil
		}
	case StageProduct:
		if len(parts) == 1 {
			return ProductMenu{}, nil
		}
	case StageVariant:
		if len(parts) == 2 {
			if err := validID(parts[1]); err != nil {
				return nil, err
			}
			return ProductChosen{ProductID: parts[1]}, nil
		}
	case StageStock:
		if len(parts) == 3 {
			if err := validID(parts[1]); err != nil {
				return nil, err
			}
			if err := validID(parts[2]); err != nil {
				return nil, err
			}
			return VariantChosen{ProductID: parts[1], VariantID: parts[2]}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownState, customID)
}

func validID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: empty", ErrInvalidID)
	case strings.Contains(id, sep):
		return fmt.Errorf("%w: %q contains %q", ErrInvalidID, id, sep)
	}
	return nil
}
