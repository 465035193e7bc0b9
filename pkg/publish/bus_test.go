package publish

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/router"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus()
	var order []string
	record := func(name string, result any) Subscriber {
		return func(event string, ctx router.Context) (any, error) {
			order = append(order, name+":"+event+":"+ctx.Get("id"))
			return result, nil
		}
	}
	bus.Subscribe(Wildcard, record("all", nil))
	bus.Subscribe("user.show", record("first", "a"))
	bus.Subscribe("user.show", record("second", "b"))
	bus.Subscribe("user.edit", record("other", "x"))

	got, err := bus.Publish("user.show", router.Context{{Name: "id", Value: "42"}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "b" {
		t.Errorf("result = %v, want last non-nil result", got)
	}
	want := []string{"first:user.show:42", "second:user.show:42", "all:user.show:42"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestBusStopsAtFirstError(t *testing.T) {
	bus := NewBus()
	boom := stderrors.New("boom")
	called := false
	bus.Subscribe("e", func(string, router.Context) (any, error) { return nil, boom })
	bus.Subscribe("e", func(string, router.Context) (any, error) { called = true; return nil, nil })

	if _, err := bus.Publish("e", nil); err != boom {
		t.Errorf("Publish() error = %v, want boom", err)
	}
	if called {
		t.Error("delivery should stop at the first error")
	}
}

func TestBusNoSubscriber(t *testing.T) {
	bus := NewBus()
	if _, err := bus.Publish("nobody", nil); !stderrors.Is(err, errors.New("R022")) {
		t.Errorf("Publish() error = %v, want R022", err)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	unsubscribe := bus.Subscribe("e", func(string, router.Context) (any, error) { return "x", nil })
	keep := bus.Subscribe("e", func(string, router.Context) (any, error) { return "y", nil })
	defer keep()

	unsubscribe()
	unsubscribe()
	if n := bus.Subscribers("e"); n != 1 {
		t.Fatalf("Subscribers() = %d, want 1", n)
	}
	got, err := bus.Publish("e", nil)
	if err != nil || got != "y" {
		t.Errorf("Publish() = %v, %v", got, err)
	}
}

func TestBusAsRouterPublisher(t *testing.T) {
	bus := NewBus()
	var got router.Context
	bus.Subscribe("user.show", func(_ string, ctx router.Context) (any, error) {
		got = ctx
		return nil, nil
	})

	var publish router.PublishFunc = bus.Publish
	if _, err := publish("user.show", router.Context{{Name: "id", Value: "7"}}); err != nil {
		t.Fatal(err)
	}
	if got.Get("id") != "7" {
		t.Errorf("context = %v", got)
	}
}
