package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ferritemq/ferrite-go/fileio"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Defaults store", Ordered, func() {
	var store *Store
	var path string

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "ferrite-config")
		Expect(err).ShouldNot(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		path = filepath.Join(dir, "client.yaml")
		store, err = NewStore(path)
		Expect(err).ShouldNot(HaveOccurred())
	})

	When("No file exists yet", func() {
		It("loads zero defaults without error", func() {
			defaults, err := store.Load()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(defaults).To(Equal(Defaults{}))
		})
	})

	When("Defaults have been saved", func() {
		saved := Defaults{
			Host:     "broker.internal",
			Port:     4870,
			LogLevel: "debug",
		}

		BeforeEach(func() {
			Expect(store.Save(saved)).ShouldNot(HaveOccurred())
		})

		It("round-trips them", func() {
			defaults, err := store.Load()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(defaults).To(Equal(saved))
		})

		It("lets the environment take precedence", func() {
			os.Setenv(hostEnvVar, "broker.override")
			os.Setenv(debugEnvVar, "true")
			DeferCleanup(os.Unsetenv, hostEnvVar)
			DeferCleanup(os.Unsetenv, debugEnvVar)

			defaults, err := store.Load()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(defaults.Host).To(Equal("broker.override"))
			Expect(defaults.Debug).To(BeTrue())
			Expect(defaults.Port).To(Equal(saved.Port), "unset env vars must not clobber file values")
		})

		It("does not persist environment overrides", func() {
			os.Setenv(hostEnvVar, "broker.override")
			DeferCleanup(os.Unsetenv, hostEnvVar)

			_, err := store.Load()
			Expect(err).ShouldNot(HaveOccurred())

			os.Unsetenv(hostEnvVar)
			defaults, err := store.Load()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(defaults.Host).To(Equal(saved.Host))
		})
	})

	When("The underlying file cannot be written", func() {
		It("surfaces the failure", func() {
			mockIo := fileio.MockFileIo{}
			mockIo.On("WriteFile", path).Return(fmt.Errorf("disk full"))

			mockStore, err := NewStoreWithFileIo(path, &mockIo)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(mockStore.Save(Defaults{})).Should(HaveOccurred())
		})
	})

	When("The file is malformed", func() {
		It("reports a parse error", func() {
			Expect(os.WriteFile(path, []byte("{not yaml"), 0600)).ShouldNot(HaveOccurred())
			_, err := store.Load()
			Expect(err).Should(HaveOccurred())
		})
	})
})
