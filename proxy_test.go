package webtrace_test

import (
	. "github.com/lightstep/webtrace-go"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type greeter interface {
	Greet(name string) string
	Farewell(name string) string
}

type plainGreeter struct{}

func (plainGreeter) Greet(name string) string    { return "hello " + name }
func (plainGreeter) Farewell(name string) string { return "bye " + name }

type loudGreeter struct {
	greeter
	Proxy[greeter]
}

func newLoudGreeter(g greeter) *loudGreeter {
	return &loudGreeter{greeter: g, Proxy: NewProxy(g)}
}

func (l *loudGreeter) Greet(name string) string {
	return l.greeter.Greet(name) + "!"
}

var _ = Describe("Proxy", func() {
	It("forwards methods it does not override", func() {
		var g greeter = newLoudGreeter(plainGreeter{})
		Expect(g.Greet("ann")).To(Equal("hello ann!"))
		Expect(g.Farewell("ann")).To(Equal("bye ann"))
	})

	It("unwraps any number of layers", func() {
		inner := plainGreeter{}
		var g greeter = newLoudGreeter(newLoudGreeter(inner))
		Expect(g.Greet("bo")).To(Equal("hello bo!!"))
		Expect(Unwrap(g)).To(Equal(greeter(inner)))
		Expect(IsProxy(g)).To(BeTrue())
		Expect(IsProxy(Unwrap(g))).To(BeFalse())
	})

	It("returns plain values unchanged", func() {
		var g greeter = plainGreeter{}
		Expect(Unwrap(g)).To(Equal(g))
	})
})
