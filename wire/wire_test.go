package wire

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestWire(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Wire Suite")
}

var _ = Describe("Line extraction", func() {

	When("The buffer holds a complete line with trailing bytes", func() {
		buf := []byte("INFO {\"server_id\":\"abc\"}\r\nPING\r\nleftover")

		It("returns the line without its terminator and preserves the rest", func() {
			line, rest, ok := ExtractLine(buf)
			Expect(ok).To(BeTrue())
			Expect(line).To(Equal([]byte("INFO {\"server_id\":\"abc\"}")))
			Expect(rest).To(Equal([]byte("PING\r\nleftover")))
		})

		It("is idempotent on the same unconsumed buffer", func() {
			first, _, _ := ExtractLine(buf)
			second, _, _ := ExtractLine(buf)
			Expect(second).To(Equal(first))
		})
	})

	When("The buffer holds no complete line", func() {
		It("reports nothing for a partial line", func() {
			_, rest, ok := ExtractLine([]byte("INFO {\"server_"))
			Expect(ok).To(BeFalse())
			Expect(rest).To(Equal([]byte("INFO {\"server_")))
		})

		It("reports nothing for a bare carriage return", func() {
			_, _, ok := ExtractLine([]byte("PING\r"))
			Expect(ok).To(BeFalse())
		})

		It("reports nothing for an empty buffer", func() {
			_, _, ok := ExtractLine(nil)
			Expect(ok).To(BeFalse())
		})
	})

	When("The line is empty", func() {
		It("returns an empty line", func() {
			line, rest, ok := ExtractLine([]byte("\r\nmore"))
			Expect(ok).To(BeTrue())
			Expect(line).To(BeEmpty())
			Expect(rest).To(Equal([]byte("more")))
		})
	})
})

var _ = Describe("Frame rendering", func() {

	It("keeps the acknowledgment frame at its fixed wire size", func() {
		Expect(OKFrame).To(HaveLen(5))
	})

	It("makes line terminators visible", func() {
		Expect(Render([]byte("PING\r\n"))).To(Equal("PING␍␊"))
	})
})
