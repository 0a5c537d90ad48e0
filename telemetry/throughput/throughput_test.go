package throughput

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestThroughput(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Throughput Suite")
}

var _ = Describe("Throughput", func() {
	When("Nothing has been counted yet", func() {
		It("serves an empty digest", func() {
			done := make(chan struct{})
			defer close(done)

			tp := New("bytes", done)

			var decoded struct {
				Total int   `json:"total"`
				Data  []int `json:"data"`
			}
			Expect(json.Unmarshal(tp.String(), &decoded)).ShouldNot(HaveOccurred())
			Expect(decoded.Total).To(BeZero())
			Expect(decoded.Data).To(BeEmpty())
		})
	})

	When("A digest is requested while the collector is live", func() {
		It("always yields a well-formed digest", func() {
			done := make(chan struct{})
			defer close(done)

			tp := New("bytes", done)

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				deadline := time.Now().Add(100 * time.Millisecond)
				for time.Now().Before(deadline) {
					tp.Count(7)
					tp.Reset()
				}
			}()

			for i := 0; i < 200; i++ {
				var decoded struct {
					Total int   `json:"total"`
					Data  []int `json:"data"`
				}
				digest := tp.String()
				Expect(json.Unmarshal(digest, &decoded)).ShouldNot(HaveOccurred(), "digest was not valid json: %s", digest)
			}

			wg.Wait()
		})
	})
})
