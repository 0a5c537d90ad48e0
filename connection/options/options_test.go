package options

import (
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ferritemq/ferrite-go/connection"
	"github.com/ferritemq/ferrite-go/wire"
)

func TestOptions(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Options Suite")
}

var _ = Describe("Option checking", func() {

	When("The client requires TLS but the server cannot speak it", func() {
		It("reports a mismatch", func() {
			err := Check(&wire.ServerInfo{}, ConnectOptions{RequireTLS: true})

			var mismatch *connection.OptionMismatchError
			Expect(err).To(HaveOccurred())
			Expect(errors.As(err, &mismatch)).To(BeTrue(), "expected an OptionMismatchError but got %T", err)
		})
	})

	When("The client requires TLS and the server offers it", func() {
		It("passes", func() {
			err := Check(&wire.ServerInfo{TLSAvailable: true}, ConnectOptions{RequireTLS: true})
			Expect(err).To(BeNil())
		})
	})

	When("The server mandates TLS", func() {
		It("passes even without caller TLS config because the transport upgrades with its base config", func() {
			err := Check(&wire.ServerInfo{TLSRequired: true}, ConnectOptions{})
			Expect(err).To(BeNil())
		})
	})

	When("The server requires authentication", func() {
		It("reports a mismatch", func() {
			err := Check(&wire.ServerInfo{AuthRequired: true}, ConnectOptions{})
			Expect(err).To(HaveOccurred())
		})
	})
})
