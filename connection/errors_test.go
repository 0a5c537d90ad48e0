package connection

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestConnectionErrors(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Connection Errors Suite")
}

var _ = Describe("Connection errors", func() {

	When("Wrapping an underlying cause", func() {
		cause := fmt.Errorf("broken pipe")

		It("exposes it through errors.Is", func() {
			var err error = &WriteFailedError{Err: cause}
			Expect(errors.Is(err, cause)).To(BeTrue())
		})

		It("keeps its type through further wrapping", func() {
			wrapped := fmt.Errorf("connect: %w", &ConnectionRefusedError{Err: cause})

			var refused *ConnectionRefusedError
			Expect(errors.As(wrapped, &refused)).To(BeTrue())
			Expect(refused.Unwrap()).To(Equal(cause))
		})
	})

	When("Reporting a mismatch", func() {
		It("uses the reason verbatim", func() {
			err := &OptionMismatchError{Reason: "server requires authentication"}
			Expect(err.Error()).To(Equal("server requires authentication"))
		})
	})
})
