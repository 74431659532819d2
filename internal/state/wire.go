package state

import (
	"encoding/json"
	"fmt"
	"math"
)

// wireElement is the JSON shape of one element of a draw payload. Points use
// the first five fields; shapes add an extent and, for text, glyph fields.
// Browsers send shapes with both endX/endY and width/height, older clients
// only width/height.
type wireElement struct {
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Color     string   `json:"color"`
	LineWidth float64  `json:"lineWidth"`
	Type      ToolKind `json:"type"`
	EndX      *float64 `json:"endX,omitempty"`
	EndY      *float64 `json:"endY,omitempty"`
	Width     *float64 `json:"width,omitempty"`
	Height    *float64 `json:"height,omitempty"`
	Text      string   `json:"text,omitempty"`
	FontSize  float64  `json:"fontSize,omitempty"`
}

// MarshalJSON encodes the event as the array payload of a draw message.
func (e DrawEvent) MarshalJSON() ([]byte, error) {
	elems := make([]wireElement, 0, e.Len())
	if e.Kind.Freehand() {
		for _, p := range e.Points {
			elems = append(elems, wireElement{
				X: p.X, Y: p.Y, Color: p.Color, LineWidth: float64(p.LineWidth), Type: p.Kind,
			})
		}
	} else if e.Shape != nil {
		elems = append(elems, shapeToWire(*e.Shape))
	}
	return json.Marshal(elems)
}

// UnmarshalJSON decodes a draw payload. The first element's type decides the
// variant. Structural problems inside a well-formed array (mixed kinds, empty
// payloads, missing extents) are left for Validate and the renderer to skip.
func (e *DrawEvent) UnmarshalJSON(data []byte) error {
	var elems []wireElement
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}
	*e = DrawEvent{}
	if len(elems) == 0 {
		return nil
	}
	e.Kind = elems[0].Type
	if e.Kind.Freehand() {
		e.Points = make([]Point, 0, len(elems))
		for _, el := range elems {
			e.Points = append(e.Points, Point{
				X: el.X, Y: el.Y, Color: el.Color, LineWidth: lineWidth(el.LineWidth), Kind: el.Type,
			})
		}
		return nil
	}
	if len(elems) > 1 {
		return fmt.Errorf("shape event carries %d elements", len(elems))
	}
	s := shapeFromWire(elems[0])
	e.Shape = &s
	return nil
}

func shapeToWire(s Shape) wireElement {
	el := wireElement{
		X:         s.Anchor.X,
		Y:         s.Anchor.Y,
		Color:     s.Color,
		LineWidth: float64(s.LineWidth),
		Type:      s.Kind,
		Text:      s.Text,
	}
	if s.Kind == ToolText {
		el.FontSize = float64(s.EffectiveFontSize())
	}
	if w, h, ok := s.Extent(); ok {
		el.EndX, el.EndY = &s.End.X, &s.End.Y
		el.Width, el.Height = &w, &h
	}
	return el
}

func shapeFromWire(el wireElement) Shape {
	s := Shape{
		Kind:      el.Type,
		Anchor:    Vec{X: el.X, Y: el.Y},
		Color:     el.Color,
		LineWidth: lineWidth(el.LineWidth),
		Text:      el.Text,
		FontSize:  int(math.Round(el.FontSize)),
	}
	switch {
	case el.EndX != nil && el.EndY != nil:
		s.End = &Vec{X: *el.EndX, Y: *el.EndY}
	case el.Width != nil && el.Height != nil:
		s.End = &Vec{X: el.X + *el.Width, Y: el.Y + *el.Height}
	}
	return s
}

// lineWidth rounds slider values to whole pixels, never below one.
func lineWidth(v float64) int {
	w := int(math.Round(v))
	if w < 1 {
		return 1
	}
	return w
}
