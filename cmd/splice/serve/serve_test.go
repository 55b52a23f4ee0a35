package servecmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	servecmder "github.com/papercomputeco/splice/cmd/splice/serve"
	"github.com/papercomputeco/splice/pkg/config"
)

var _ = Describe("NewServeCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))
	})

	It("registers the listen, dir, and delay flags with config defaults", func() {
		cmd := servecmder.NewServeCmd()
		defaults := config.NewDefaultConfig()

		listen := cmd.Flags().Lookup("listen")
		Expect(listen).NotTo(BeNil())
		Expect(listen.Shorthand).To(Equal("l"))
		Expect(listen.DefValue).To(Equal(defaults.Serve.Listen))

		dir := cmd.Flags().Lookup("dir")
		Expect(dir).NotTo(BeNil())
		Expect(dir.DefValue).To(Equal(defaults.Serve.Dir))

		delay := cmd.Flags().Lookup("delay")
		Expect(delay).NotTo(BeNil())
		Expect(delay.DefValue).To(Equal("0"))
	})
})
