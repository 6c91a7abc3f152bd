package mempool_test

import (
	"fmt"
	"testing"

	"github.com/ardanlabs/protochain/foundation/blockchain/database"
	"github.com/ardanlabs/protochain/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_CRUD(t *testing.T) {
	type table struct {
		name string
		txs  []database.Tx
	}

	var txs []database.Tx
	for i := 0; i < 4; i++ {
		txs = append(txs, database.NewFeeTx(fmt.Sprintf("miner%d", i)))
	}

	tt := []table{
		{
			name: "basic",
			txs:  txs,
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transaction.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New()

					for i, tx := range tst.txs {
						if n := mp.Add(tx); n != i+1 {
							t.Fatalf("\t%s\tTest %d:\tShould be able to add new transaction: %d", failed, testID, n)
						}
						t.Logf("\t%s\tTest %d:\tShould be able to add new transaction: %s", success, testID, tx.To)
					}

					for i, tx := range mp.Copy() {
						if tx.Hash != tst.txs[i].Hash {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx.Hash)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.txs[i].Hash)
							t.Fatalf("\t%s\tTest %d:\tShould keep transactions in order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould keep transactions in order.", success, testID)

					front := mp.PickFront(2)
					if len(front) != 2 || front[0].Hash != tst.txs[0].Hash || front[1].Hash != tst.txs[1].Hash {
						t.Fatalf("\t%s\tTest %d:\tShould pick from the front of the pool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould pick from the front of the pool.", success, testID)

					if len(mp.PickFront(100)) != len(tst.txs) {
						t.Fatalf("\t%s\tTest %d:\tShould pick at most the size of the pool.", failed, testID)
					}

					if idx := mp.Index(tst.txs[2].Hash); idx != 2 {
						t.Fatalf("\t%s\tTest %d:\tShould find the transaction index: %d", failed, testID, idx)
					}
					if mp.Contains("xyz") {
						t.Fatalf("\t%s\tTest %d:\tShould not find an unknown transaction.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to find transactions.", success, testID)

					if n := mp.Delete(tst.txs[1].Hash, "xyz"); n != 1 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to remove a transaction: %d", failed, testID, n)
					}
					if l := mp.Count(); l != 3 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to remove a transaction.", failed, testID)
					}
					if mp.Index(tst.txs[2].Hash) != 1 {
						t.Fatalf("\t%s\tTest %d:\tShould keep the order after a delete.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to remove a transaction.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
