package memctrl

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/nvmsim/addrtrans"
	"github.com/sarchlab/nvmsim/config"
	"github.com/sarchlab/nvmsim/device"
	"github.com/sarchlab/nvmsim/sim"
)

type captureDomain struct {
	queue     *sim.EventQueue
	completed []*sim.Request
	cycles    []sim.Cycle
}

func (d *captureDomain) Name() string          { return "capture" }
func (d *captureDomain) Cycle(steps sim.Cycle) {}

func (d *captureDomain) RequestComplete(req *sim.Request) bool {
	d.completed = append(d.completed, req)
	d.cycles = append(d.cycles, d.queue.CurrentCycle())

	return true
}

func schedulerParams(extra map[string]string) *config.Params {
	values := map[string]string{
		"COLS": "64", "ROWS": "256", "BANKS": "2", "RANKS": "1",
		"CHANNELS": "1", "MATHeight": "256", "BusWidth": "64",
		"RATE": "1",
		"tRCD": "10", "tRAS": "20", "tRP": "10", "tBURST": "4",
		"tCAS": "5", "tCWD": "4", "tWR": "6", "tWTR": "3", "tCCD": "4",
		"tAL": "0", "tRTP": "1", "tRRDR": "1", "tFAW": "1",
		"tPD": "1", "tXP": "1", "tXPDLL": "1",
		"ReadQueueSize": "4", "WriteQueueSize": "2",
		"HighWaterMark": "2", "LowWaterMark": "0",
		"StarvationThreshold": "4",
	}
	for k, v := range extra {
		values[k] = v
	}

	return config.ParamsFrom(config.FromMap(values))
}

var _ = Describe("Controller with a real rank", func() {
	var (
		p          *config.Params
		queue      *sim.EventQueue
		rank       *device.Rank
		translator *addrtrans.Translator
		mc         *Controller
		parent     *captureDomain
	)

	setup := func(extra map[string]string) {
		p = schedulerParams(extra)
		queue = sim.NewEventQueue()
		translator = addrtrans.New(p)
		rank = device.NewRank("mc0.rank0", 0, queue, p)
		mc = NewController("mc0", 0, queue, p, translator,
			[]Memory{rank})
		rank.SetParent(mc)
		parent = &captureDomain{queue: queue}
		mc.SetParent(parent)
	}

	BeforeEach(func() {
		setup(nil)
	})

	step := func(n int) {
		for i := 0; i < n; i++ {
			mc.Cycle(1)
			queue.AdvanceTo(queue.CurrentCycle() + 1)
		}
	}

	request := func(t sim.OpType, row, col, bank uint64) *sim.Request {
		physical := translator.Encode(sim.Address{
			Row: row, Col: col, Bank: bank,
		})
		req := sim.NewRequest(t, sim.Address{Physical: physical})
		if t == sim.Write {
			req.Data = sim.NewDataBlock(64)
		}

		return req
	}

	Context("admission", func() {
		It("should enforce the write queue cap", func() {
			Expect(mc.IssueCommand(request(sim.Write, 0, 0, 0))).To(BeTrue())
			Expect(mc.IssueCommand(request(sim.Write, 0, 1, 0))).To(BeTrue())
			Expect(mc.IssueCommand(request(sim.Write, 0, 2, 0))).To(BeFalse())
			Expect(mc.QueueFull(nil)).To(BeTrue())
		})

		It("should stamp the arrival cycle", func() {
			queue.AdvanceTo(7)
			req := request(sim.Read, 0, 0, 0)

			Expect(mc.IssueCommand(req)).To(BeTrue())
			Expect(req.ArrivalCycle).To(Equal(sim.Cycle(7)))
		})

		It("should reject non-transactions", func() {
			Expect(mc.IssueCommand(
				request(sim.Activate, 0, 0, 0))).To(BeFalse())
		})
	})

	Context("write-queue drain", func() {
		It("should not schedule writes below the high watermark", func() {
			Expect(mc.IssueCommand(request(sim.Write, 0, 0, 0))).To(BeTrue())

			step(5)

			Expect(mc.draining[0]).To(BeFalse())
			Expect(mc.writeQueues[0]).To(HaveLen(1))
		})

		It("should drain stickily from high to low watermark", func() {
			Expect(mc.IssueCommand(request(sim.Write, 0, 0, 0))).To(BeTrue())
			Expect(mc.IssueCommand(request(sim.Write, 0, 1, 0))).To(BeTrue())
			Expect(mc.IssueCommand(request(sim.Read, 5, 0, 0))).To(BeTrue())

			step(1)
			Expect(mc.draining[0]).To(BeTrue())
			Expect(mc.writeQueues[0]).To(HaveLen(1))
			Expect(mc.readQueues[0]).To(HaveLen(1))

			step(1)
			Expect(mc.writeQueues[0]).To(BeEmpty())

			// The read is only scheduled after the drain completes and the
			// bank can be turned around.
			step(1)
			Expect(mc.draining[0]).To(BeFalse())
			Expect(mc.readQueues[0]).To(HaveLen(1))

			step(40)
			Expect(mc.readQueues[0]).To(BeEmpty())
		})

		It("should schedule writes before reads while draining", func() {
			w1 := request(sim.Write, 0, 0, 0)
			w2 := request(sim.Write, 0, 1, 0)
			r1 := request(sim.Read, 0, 2, 0)
			Expect(mc.IssueCommand(w1)).To(BeTrue())
			Expect(mc.IssueCommand(w2)).To(BeTrue())
			Expect(mc.IssueCommand(r1)).To(BeTrue())

			step(60)

			Expect(parent.completed).To(HaveLen(3))
			Expect(parent.completed[0]).To(BeIdenticalTo(w1))
			Expect(parent.completed[1]).To(BeIdenticalTo(w2))
			Expect(parent.completed[2]).To(BeIdenticalTo(r1))
		})
	})

	Context("row-buffer accounting", func() {
		It("should count hits and misses", func() {
			Expect(mc.IssueCommand(request(sim.Read, 0, 0, 0))).To(BeTrue())
			step(1)
			Expect(mc.IssueCommand(request(sim.Read, 0, 1, 0))).To(BeTrue())
			Expect(mc.IssueCommand(request(sim.Read, 0, 2, 0))).To(BeTrue())

			step(40)

			Expect(mc.rbMiss).To(Equal(uint64(1)))
			Expect(mc.rbHits).To(Equal(uint64(2)))
		})
	})

	Context("starvation promotion", func() {
		It("should promote a passed-over closed-bank write", func() {
			setup(map[string]string{
				"WriteQueueSize": "16",
				"HighWaterMark":  "2",
			})

			// One write to bank 1, then a stream of row-hit writes to
			// bank 0 keeping the drain busy.
			starved := request(sim.Write, 0, 0, 1)
			Expect(mc.IssueCommand(
				request(sim.Write, 0, 0, 0))).To(BeTrue())
			Expect(mc.IssueCommand(starved)).To(BeTrue())
			for col := uint64(1); col < 8; col++ {
				Expect(mc.IssueCommand(
					request(sim.Write, 0, col, 0))).To(BeTrue())
			}

			step(80)

			Expect(mc.starvationPrecharges).To(Equal(uint64(1)))
			Expect(parent.completed).To(ContainElement(starved))
		})
	})

	Context("starvation bound", func() {
		It("should reset the counter once selected", func() {
			setup(map[string]string{
				"WriteQueueSize": "16",
				"HighWaterMark":  "2",
			})

			Expect(mc.IssueCommand(request(sim.Write, 0, 0, 0))).To(BeTrue())
			Expect(mc.IssueCommand(request(sim.Write, 0, 0, 1))).To(BeTrue())
			for col := uint64(1); col < 8; col++ {
				Expect(mc.IssueCommand(
					request(sim.Write, 0, col, 0))).To(BeTrue())
			}

			step(120)

			Expect(mc.plans[0][1].starvation).To(Equal(uint64(0)))
		})
	})

	Context("initial power-down", func() {
		It("should wake a powered-down bank before activating", func() {
			setup(map[string]string{"InitPD": "true"})

			req := request(sim.Read, 0, 0, 0)
			Expect(mc.IssueCommand(req)).To(BeTrue())

			step(40)

			Expect(parent.completed).To(ConsistOf(req))
			Expect(rank.PoweredDown(0)).To(BeFalse())
		})
	})

	Context("watermark sanity", func() {
		It("should clamp a high watermark above the queue size", func() {
			setup(map[string]string{
				"WriteQueueSize": "4",
				"HighWaterMark":  "9",
			})

			Expect(mc.highWaterMark).To(Equal(uint64(4)))
		})

		It("should reset a low watermark above the high watermark", func() {
			setup(map[string]string{
				"HighWaterMark": "2",
				"LowWaterMark":  "3",
			})

			Expect(mc.lowWaterMark).To(Equal(uint64(0)))
		})
	})
})

var _ = Describe("Controller with a mock memory", func() {
	var (
		mockCtrl *gomock.Controller
		memory   *MockMemory
		queue    *sim.EventQueue
		mc       *Controller
		issued   []sim.OpType
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		memory = NewMockMemory(mockCtrl)
		queue = sim.NewEventQueue()
		p := schedulerParams(nil)
		mc = NewController("mc0", 0, queue, p, addrtrans.New(p),
			[]Memory{memory})
		issued = nil

		memory.EXPECT().Cycle(gomock.Any()).AnyTimes()
		memory.EXPECT().RefreshPending(gomock.Any()).
			Return(false).AnyTimes()
		memory.EXPECT().PoweredDown(gomock.Any()).
			Return(false).AnyTimes()
		memory.EXPECT().IsIssuable(gomock.Any(), gomock.Any()).
			Return(true).AnyTimes()
		memory.EXPECT().IssueCommand(gomock.Any()).
			DoAndReturn(func(req *sim.Request) bool {
				issued = append(issued, req.Type)
				return true
			}).AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should expand a read to a closed bank as ACT then READ", func() {
		memory.EXPECT().WouldConflict(gomock.Any(), gomock.Any()).
			Return(true).AnyTimes()
		memory.EXPECT().BankClosed(gomock.Any()).Return(true).AnyTimes()

		req := sim.NewRequest(sim.Read, sim.Address{Physical: 0})
		Expect(mc.IssueCommand(req)).To(BeTrue())

		mc.Cycle(1)
		mc.Cycle(1)

		Expect(issued).To(Equal([]sim.OpType{sim.Activate, sim.Read}))
	})

	It("should expand a conflicting read as PRE, ACT, READ", func() {
		memory.EXPECT().WouldConflict(gomock.Any(), gomock.Any()).
			Return(true).AnyTimes()
		memory.EXPECT().BankClosed(gomock.Any()).Return(false).AnyTimes()

		req := sim.NewRequest(sim.Read, sim.Address{Physical: 0})
		Expect(mc.IssueCommand(req)).To(BeTrue())

		mc.Cycle(1)
		mc.Cycle(1)
		mc.Cycle(1)

		Expect(issued).To(Equal([]sim.OpType{
			sim.Precharge, sim.Activate, sim.Read}))
	})

	It("should issue a row hit directly", func() {
		memory.EXPECT().WouldConflict(gomock.Any(), gomock.Any()).
			Return(false).AnyTimes()
		memory.EXPECT().BankClosed(gomock.Any()).Return(false).AnyTimes()

		req := sim.NewRequest(sim.Read, sim.Address{Physical: 0})
		Expect(mc.IssueCommand(req)).To(BeTrue())

		mc.Cycle(1)

		Expect(issued).To(Equal([]sim.OpType{sim.Read}))
	})
})
