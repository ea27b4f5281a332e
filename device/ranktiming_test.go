package device

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/nvmsim/sim"
)

var _ = Describe("RankTiming", func() {
	var rt *RankTiming

	BeforeEach(func() {
		rt = NewRankTiming(scenarioConfig(map[string]string{
			"tRRDR": "4",
			"tFAW":  "30",
		}))
	})

	It("should allow the first activate", func() {
		Expect(rt.CanActivate(0)).To(BeTrue())
	})

	It("should enforce activate-to-activate spacing", func() {
		rt.NoteActivate(10)

		Expect(rt.CanActivate(13)).To(BeFalse())
		Expect(rt.CanActivate(14)).To(BeTrue())
	})

	It("should enforce the four-activate window", func() {
		for _, c := range []sim.Cycle{0, 5, 10, 15} {
			Expect(rt.CanActivate(c)).To(BeTrue())
			rt.NoteActivate(c)
		}

		// The fifth activate must wait until the first leaves the window.
		Expect(rt.CanActivate(29)).To(BeFalse())
		Expect(rt.CanActivate(30)).To(BeTrue())

		rt.NoteActivate(30)
		// Window now starts at cycle 5.
		Expect(rt.CanActivate(34)).To(BeFalse())
		Expect(rt.CanActivate(35)).To(BeTrue())
	})

	It("should serialize bursts on the shared bus", func() {
		rt.NoteRead(10)

		// tBURST=4, tCCD=4: next read no earlier than 14.
		Expect(rt.NextRead()).To(Equal(sim.Cycle(14)))

		// Read-to-write turnaround: tCAS + tBURST + 2 - tCWD.
		Expect(rt.NextWrite()).To(Equal(sim.Cycle(10 + 5 + 4 + 2 - 4)))
	})

	It("should impose write-to-read turnaround", func() {
		rt.NoteWrite(20)

		// tCWD + tBURST + tWTR.
		Expect(rt.NextRead()).To(Equal(sim.Cycle(20 + 4 + 4 + 3)))
		Expect(rt.NextWrite()).To(Equal(sim.Cycle(24)))
	})

	It("should keep bus constraints monotone", func() {
		rt.NoteRead(10)
		first := rt.NextRead()

		rt.NoteRead(10)
		Expect(rt.NextRead() >= first).To(BeTrue())
	})
})

var _ = Describe("Rank", func() {
	var (
		queue  *sim.EventQueue
		parent *captureDomain
		rank   *Rank
	)

	BeforeEach(func() {
		queue = sim.NewEventQueue()
		parent = &captureDomain{queue: queue}
		rank = NewRank("mc0.rank0", 0, queue, scenarioConfig(nil))
		rank.SetParent(parent)
	})

	It("should dispatch commands to the addressed bank", func() {
		act := sim.NewRequest(sim.Activate, sim.Address{Bank: 1, Row: 3})

		Expect(rank.IssueCommand(act)).To(BeTrue())
		Expect(rank.Bank(1).State()).To(Equal(BankOpen))
		Expect(rank.Bank(0).State()).To(Equal(BankClosed))
	})

	It("should share bus timing between sibling banks", func() {
		Expect(rank.IssueCommand(
			sim.NewRequest(sim.Activate, sim.Address{Bank: 0, Row: 0}))).
			To(BeTrue())

		queue.AdvanceTo(2)
		Expect(rank.IssueCommand(
			sim.NewRequest(sim.Activate, sim.Address{Bank: 1, Row: 0}))).
			To(BeTrue())

		queue.AdvanceTo(12)
		Expect(rank.IssueCommand(
			sim.NewRequest(sim.Read, sim.Address{Bank: 0, Row: 0}))).
			To(BeTrue())

		// Bank 1 is past its own tRCD but the bus is busy until 16.
		read1 := sim.NewRequest(sim.Read, sim.Address{Bank: 1, Row: 0})
		queue.AdvanceTo(15)
		Expect(rank.IssueCommand(read1)).To(BeFalse())

		queue.AdvanceTo(16)
		Expect(rank.IssueCommand(read1)).To(BeTrue())
	})

	It("should relay responses from the leader bank upward", func() {
		Expect(rank.IssueCommand(
			sim.NewRequest(sim.Activate, sim.Address{Bank: 0, Row: 0}))).
			To(BeTrue())

		queue.AdvanceTo(10)
		read := sim.NewRequest(sim.Read, sim.Address{Bank: 0, Row: 0})
		Expect(rank.IssueCommand(read)).To(BeTrue())

		queue.AdvanceTo(40)
		Expect(parent.completed).To(ConsistOf(read))
	})

	It("should report idle only when every bank is idle", func() {
		Expect(rank.Idle()).To(BeTrue())

		Expect(rank.IssueCommand(
			sim.NewRequest(sim.Activate, sim.Address{Bank: 0, Row: 0}))).
			To(BeTrue())

		Expect(rank.Idle()).To(BeFalse())
	})
})
