package wire

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server greeting", func() {

	When("Given a well-formed INFO line", func() {
		line := []byte(`INFO {"server_id":"F4KE1D","version":"2.3.1","host":"0.0.0.0","port":4870,"proto":1,"tls_required":true,"max_payload":1048576}`)

		It("parses every announced capability", func() {
			info, err := ParseServerInfo(line)
			Expect(err).To(BeNil(), "failed to parse a valid greeting: %s", err)
			Expect(info.ServerID).To(Equal("F4KE1D"))
			Expect(info.Version).To(Equal("2.3.1"))
			Expect(info.Port).To(Equal(4870))
			Expect(info.TLSRequired).To(BeTrue())
			Expect(info.MaxPayload).To(Equal(int64(1048576)))
		})
	})

	When("The verb is lowercase", func() {
		It("still parses", func() {
			info, err := ParseServerInfo([]byte(`info {"server_id":"x"}`))
			Expect(err).To(BeNil())
			Expect(info.ServerID).To(Equal("x"))
		})
	})

	When("Given a line with the wrong verb", func() {
		It("rejects it", func() {
			_, err := ParseServerInfo([]byte(`PING`))
			Expect(err).To(HaveOccurred())
		})
	})

	When("Given an INFO line with a malformed payload", func() {
		It("rejects it", func() {
			_, err := ParseServerInfo([]byte(`INFO {"server_id":`))
			Expect(err).To(HaveOccurred())
		})
	})
})
