package webtrace_test

import (
	"errors"
	"fmt"

	. "github.com/lightstep/webtrace-go"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Status", func() {
	DescribeTable("ParseStatus",
		func(line string, code int, raw string) {
			st := ParseStatus(line)
			Expect(st.Code).To(Equal(code))
			Expect(st.Raw).To(Equal(raw))
			Expect(st.Numeric()).To(Equal(code > 0))
		},
		Entry("standard line", "200 OK", 200, "200"),
		Entry("code only", "404", 404, "404"),
		Entry("leading space", "  503 Service Unavailable", 503, "503"),
		Entry("non numeric", "abc def", 0, "abc"),
		Entry("empty", "", 0, ""),
		Entry("negative", "-1 what", 0, "-1"),
		Entry("above the code range", "70000 Weird", 0, "70000"),
		Entry("below the code range", "99 Low", 0, "99"),
	)

	It("renders numeric statuses as their code", func() {
		Expect(StatusFromCode(302).String()).To(Equal("302"))
		Expect(ParseStatus("xyz").String()).To(Equal("xyz"))
	})

	It("keeps out of range codes as text", func() {
		st := StatusFromCode(70000)
		Expect(st.Numeric()).To(BeFalse())
		Expect(st.String()).To(Equal("70000"))
	})

	Describe("ResponseStatus", func() {
		It("finds a status anywhere in the chain", func() {
			err := fmt.Errorf("handler: %w", statusError(302))
			code, ok := ResponseStatus(err)
			Expect(ok).To(BeTrue())
			Expect(code).To(Equal(302))
		})

		It("reports plain errors as having no status", func() {
			_, ok := ResponseStatus(errors.New("boom"))
			Expect(ok).To(BeFalse())
			_, ok = ResponseStatus(nil)
			Expect(ok).To(BeFalse())
		})
	})
})
