package authclient_test

import (
	"github.com/jrsteele09/crm-console/kvstore"
	"github.com/jrsteele09/crm-console/kvstore/memory"
)

func newMemoryKV() kvstore.Store {
	return memory.New()
}
