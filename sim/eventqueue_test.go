package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingDomain struct {
	name      string
	log       *[]string
	completed []*Request
}

func (d *recordingDomain) Name() string { return d.name }

func (d *recordingDomain) Cycle(steps Cycle) {
	*d.log = append(*d.log, d.name)
}

func (d *recordingDomain) RequestComplete(req *Request) bool {
	d.completed = append(d.completed, req)
	*d.log = append(*d.log, d.name+":complete")

	return true
}

var _ = Describe("EventQueue", func() {
	var (
		queue *EventQueue
		log   []string
		a, b  *recordingDomain
	)

	BeforeEach(func() {
		queue = NewEventQueue()
		log = nil
		a = &recordingDomain{name: "a", log: &log}
		b = &recordingDomain{name: "b", log: &log}
	})

	It("should start at cycle 0", func() {
		Expect(queue.CurrentCycle()).To(Equal(Cycle(0)))
	})

	It("should advance to the next event on Step", func() {
		queue.InsertEvent(EventCycle, a, nil, 10)

		queue.Step()

		Expect(queue.CurrentCycle()).To(Equal(Cycle(10)))
		Expect(log).To(Equal([]string{"a"}))
	})

	It("should fire same-cycle events in insertion order", func() {
		queue.InsertEvent(EventCycle, b, nil, 5)
		queue.InsertEvent(EventCycle, a, nil, 5)
		queue.InsertEvent(EventCycle, b, nil, 5)

		queue.Step()

		Expect(log).To(Equal([]string{"b", "a", "b"}))
	})

	It("should fire all due events on AdvanceTo", func() {
		queue.InsertEvent(EventCycle, a, nil, 3)
		queue.InsertEvent(EventCycle, b, nil, 7)
		queue.InsertEvent(EventCycle, a, nil, 12)

		queue.AdvanceTo(10)

		Expect(log).To(Equal([]string{"a", "b"}))
		Expect(queue.CurrentCycle()).To(Equal(Cycle(10)))
		Expect(queue.Len()).To(Equal(1))
	})

	It("should deliver responses to the target", func() {
		req := NewRequest(Read, Address{Physical: 0x40})
		queue.InsertEvent(EventResponse, a, req, 19)

		queue.Step()

		Expect(a.completed).To(ConsistOf(req))
	})

	It("should run events inserted during firing at the same advance", func() {
		queue.InsertCallback(func() {
			queue.InsertEvent(EventCycle, a, nil, queue.CurrentCycle()+2)
		}, 4)

		queue.AdvanceTo(10)

		Expect(log).To(Equal([]string{"a"}))
		Expect(queue.CurrentCycle()).To(Equal(Cycle(10)))
	})

	It("should panic when scheduling into the past", func() {
		queue.AdvanceTo(100)

		Expect(func() {
			queue.InsertEvent(EventCycle, a, nil, 99)
		}).To(Panic())
	})
})
