package autogen_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/autogen"
)

type order struct {
	autogen.ChangeTracker

	status string
	refID  string
}

func (o *order) setStatus(v string) {
	if o.status == v {
		return
	}
	o.status = v
	o.PropertyChanged()
}

func (o *order) SetTestRefID(v string) {
	if o.refID == v {
		return
	}
	o.refID = v
	o.PropertyChanged()
}

func TestChangeTracker(t *testing.T) {
	t.Parallel()

	t.Run("same value does not notify", func(t *testing.T) {
		o := &order{status: "draft"}
		o.setStatus("draft")
		assert.False(t, o.HasChanges())
		assert.Empty(t, o.ChangedProperties())
	})

	t.Run("new value notifies once with caller derived name", func(t *testing.T) {
		o := &order{}
		o.setStatus("paid")
		o.setStatus("paid")
		assert.Equal(t, []string{"Status"}, o.ChangedProperties())
	})

	t.Run("exported setter and first change order", func(t *testing.T) {
		o := &order{}
		o.SetTestRefID("240401001")
		o.setStatus("paid")
		o.SetTestRefID("240401002")
		assert.Equal(t, []string{"TestRefID", "Status"}, o.ChangedProperties())
	})

	t.Run("reset forgets changes", func(t *testing.T) {
		o := &order{}
		o.setStatus("paid")
		o.ResetChanges()
		assert.False(t, o.HasChanges())
		o.MarkChanged("Name")
		assert.Equal(t, []string{"Name"}, o.ChangedProperties())
	})

	t.Run("concurrent marks", func(t *testing.T) {
		var tr autogen.ChangeTracker
		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tr.MarkChanged("A")
				tr.MarkChanged("B")
			}()
		}
		wg.Wait()
		assert.ElementsMatch(t, []string{"A", "B"}, tr.ChangedProperties())
	})
}

func TestPropertyFromFunc(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"example.com/shop.(*Order).setStatus":    "Status",
		"example.com/shop.(*Order).SetTestRefID": "TestRefID",
		"example.com/shop.(*Box[...]).setValue":  "Value",
		"example.com/shop.(*Order).setid":        "id",
		"example.com/shop.(*Order).Setid":        "id",
		"example.com/shop.(*Order).set":          "set",
		"example.com/shop.(*Order).rename":       "rename",
		"main.apply":                             "apply",
	}
	for fn, want := range tests {
		assert.Equal(t, want, autogen.PropertyFromFunc(fn), fn)
	}
}
