package selector_test

import (
	"testing"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	"github.com/albertocavalcante/go-tfm/moniker"
	"github.com/albertocavalcante/go-tfm/selector"
)

var frameworkPool = []string{
	"net48", "net472", "net462",
	"netstandard2.0", "netstandard2.1",
	"netcoreapp3.1", "netcoreapp3.1.0",
	"net5.0", "net5.0-windows", "net6.0", "net6", "net6.0-windows", "net6.0-linux", "net6.0-android",
	"net7.0", "net8.0-windows10.0.19041",
}

func drawProject(t *rapid.T) selector.Project {
	raws := rapid.SliceOfN(rapid.SampledFrom(frameworkPool), 0, 8).Draw(t, "frameworks")
	fws, err := moniker.ParseAll(raws)
	if err != nil {
		t.Fatalf("ParseAll(%v) error = %v", raws, err)
	}
	return selector.Project{Name: "Prop.Tests", Frameworks: fws}
}

func TestProperty_Policies(t *testing.T) {
	t.Parallel()

	t.Run("MaxReturnsAtMostOne", func(t *testing.T) {
		t.Parallel()
		rapid.Check(t, func(t *rapid.T) {
			g := NewWithT(t)
			p := drawProject(t)
			for _, policy := range []selector.Policy{selector.MaxPolicy(), selector.MaxNoWindowsPolicy()} {
				got, err := policy.Select(p)
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(len(got)).To(BeNumerically("<=", 1))
			}
		})
	})

	t.Run("MaxIsGreatest", func(t *testing.T) {
		t.Parallel()
		rapid.Check(t, func(t *rapid.T) {
			g := NewWithT(t)
			p := drawProject(t)
			got, err := selector.MaxPolicy().Select(p)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(got).To(HaveLen(min(len(p.Frameworks), 1)))
			for _, fw := range p.Frameworks {
				g.Expect(got[0].Compare(fw)).To(BeNumerically(">=", 0))
			}
		})
	})

	t.Run("MaxNoWindowsExcludesWindows", func(t *testing.T) {
		t.Parallel()
		rapid.Check(t, func(t *rapid.T) {
			g := NewWithT(t)
			got, err := selector.MaxNoWindowsPolicy().Select(drawProject(t))
			g.Expect(err).NotTo(HaveOccurred())
			for _, fw := range got {
				g.Expect(fw.Platform()).NotTo(Equal(moniker.Windows))
			}
		})
	})

	t.Run("RegexPreservesOrder", func(t *testing.T) {
		t.Parallel()
		rapid.Check(t, func(t *rapid.T) {
			g := NewWithT(t)
			pattern := rapid.SampledFrom([]string{"^net6", "windows", `\.0$`, "standard|coreapp", "."}).Draw(t, "pattern")
			policy, err := selector.RegexPolicy(pattern)
			g.Expect(err).NotTo(HaveOccurred())

			p := drawProject(t)
			got, err := policy.Select(p)
			g.Expect(err).NotTo(HaveOccurred())

			// got must be a subsequence of the input
			i := 0
			for _, fw := range p.Frameworks {
				if i < len(got) && got[i].Equal(fw) {
					i++
				}
			}
			g.Expect(i).To(Equal(len(got)))
		})
	})

	t.Run("AllIsIdentity", func(t *testing.T) {
		t.Parallel()
		rapid.Check(t, func(t *rapid.T) {
			g := NewWithT(t)
			p := drawProject(t)
			got, err := selector.AllPolicy().Select(p)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(moniker.Raws(got)).To(Equal(moniker.Raws(p.Frameworks)))
		})
	})

	t.Run("MatchResultIsCandidate", func(t *testing.T) {
		t.Parallel()
		rapid.Check(t, func(t *rapid.T) {
			g := NewWithT(t)
			reference := moniker.MustParse(rapid.SampledFrom(frameworkPool).Draw(t, "reference"))
			p := drawProject(t)
			got, ok := selector.Match(reference, p.Frameworks)
			if !ok {
				return
			}
			g.Expect(moniker.Raws(p.Frameworks)).To(ContainElement(got.Raw()))
		})
	})
}
