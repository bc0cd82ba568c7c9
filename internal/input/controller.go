// Package input implements controller handling for the NES.
package input

// Button represents NES controller buttons in shift-out order
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// ButtonState holds the eight buttons of one pad in A, B, Select, Start,
// Up, Down, Left, Right order.
type ButtonState [8]bool

// bits packs the state into the controller's shift-register order
func (bs ButtonState) bits() uint8 {
	var value uint8
	for i, pressed := range bs {
		if pressed {
			value |= 1 << i
		}
	}
	return value
}

// Controller represents one NES controller port
type Controller struct {
	buttons uint8
	strobe  bool
	cursor  int
}

// New creates a new Controller instance
func New() *Controller {
	return &Controller{}
}

// SetButton sets the state of a single button
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons replaces the whole pad state
func (c *Controller) SetButtons(state ButtonState) {
	c.buttons = state.bits()
}

// IsPressed returns true if the button is currently pressed
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// Write handles strobe writes. While strobe is high the shift cursor is
// pinned to button A.
func (c *Controller) Write(value uint8) {
	c.strobe = value&1 != 0
	if c.strobe {
		c.cursor = 0
	}
}

// Read shifts out one button per read, LSB first. After all eight buttons
// the port returns 1, and bit 6 rides along from the data bus.
func (c *Controller) Read() uint8 {
	var value uint8 = 1
	if c.cursor < 8 {
		value = c.buttons >> c.cursor & 1
	}

	if !c.strobe {
		c.cursor++
	}

	return 0x40 | value
}

// Reset resets the controller state
func (c *Controller) Reset() {
	c.buttons = 0
	c.strobe = false
	c.cursor = 0
}

// InputState represents both controller ports
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates a new input state with two controllers
func NewInputState() *InputState {
	return &InputState{
		Controller1: New(),
		Controller2: New(),
	}
}

// Reset resets both controllers
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// SetButtons1 sets the pad state for controller 1
func (is *InputState) SetButtons1(state ButtonState) {
	is.Controller1.SetButtons(state)
}

// SetButtons2 sets the pad state for controller 2
func (is *InputState) SetButtons2(state ButtonState) {
	is.Controller2.SetButtons(state)
}

// Read reads from a controller port
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		return is.Controller2.Read()
	default:
		return 0
	}
}

// Write handles the strobe register; both controllers share it
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}
