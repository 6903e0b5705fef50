// Package twiml renders Twilio markup documents for voice and messaging replies.
package twiml

import (
	"encoding/xml"
	"fmt"
)

// SayElement represents a TwiML <Say> verb.
type SayElement struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

// PlayElement represents a TwiML <Play> verb.
type PlayElement struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

// PauseElement represents a TwiML <Pause> verb.
type PauseElement struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr,omitempty"`
}

// MessageElement represents a TwiML <Message> verb.
type MessageElement struct {
	XMLName xml.Name `xml:"Message"`
	Body    string   `xml:",chardata"`
}

// Response is an ordered list of verbs wrapped in <Response>.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

// New returns an empty response document.
func New() *Response {
	return &Response{}
}

// Say appends a <Say> verb.
func (r *Response) Say(text, voice, language string) *Response {
	r.Verbs = append(r.Verbs, SayElement{Voice: voice, Language: language, Text: text})
	return r
}

// Play appends a <Play> verb.
func (r *Response) Play(url string) *Response {
	r.Verbs = append(r.Verbs, PlayElement{URL: url})
	return r
}

// Pause appends a <Pause> verb.
func (r *Response) Pause(seconds int) *Response {
	r.Verbs = append(r.Verbs, PauseElement{Length: seconds})
	return r
}

// Message appends a <Message> verb.
func (r *Response) Message(body string) *Response {
	r.Verbs = append(r.Verbs, MessageElement{Body: body})
	return r
}

// String renders the document with the XML declaration. Text content is escaped by the encoder.
func (r *Response) String() string {
	out, err := xml.MarshalIndent(r, "", "    ")
	if err != nil {
		return fmt.Sprintf("%s<Response></Response>", xml.Header)
	}
	return xml.Header + string(out)
}

// MessageReply renders a messaging reply containing a single message.
func MessageReply(body string) string {
	return New().Message(body).String()
}
