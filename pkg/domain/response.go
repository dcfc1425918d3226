package domain

// Attribute is a key/value pair attached to a response or event.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is a named group of attributes emitted by a module.
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// Transfer instructs the environment to move funds to a recipient.
type Transfer struct {
	Recipient Address `json:"recipient"`
	Amount    []Coin  `json:"amount"`
}

// Instruction is a tagged outbound instruction embedded in a module response.
// Only the transfer variant crosses the composition boundary; other kinds are
// dropped when responses are merged.
type Instruction struct {
	Transfer *Transfer `json:"transfer,omitempty"`
	Custom   []byte    `json:"custom,omitempty"`
}

// Response is the partial result a single module returns from instantiate or
// execute. The composition layer merges partial responses in invocation order.
type Response struct {
	Attributes   []Attribute   `json:"attributes,omitempty"`
	Events       []Event       `json:"events,omitempty"`
	Instructions []Instruction `json:"instructions,omitempty"`
}

// AddAttribute appends a key/value attribute and returns the response.
func (r Response) AddAttribute(key, value string) Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// AddEvent appends an event and returns the response.
func (r Response) AddEvent(event Event) Response {
	r.Events = append(r.Events, event)
	return r
}

// AddTransfer appends an outbound funds transfer instruction and returns the
// response. Zero-coin transfers are skipped.
func (r Response) AddTransfer(recipient Address, amount []Coin) Response {
	filtered := make([]Coin, 0, len(amount))
	for _, c := range amount {
		if !c.IsZero() {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return r
	}
	r.Instructions = append(r.Instructions, Instruction{Transfer: &Transfer{Recipient: recipient, Amount: filtered}})
	return r
}
