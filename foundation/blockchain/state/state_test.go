package state_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ardanlabs/protochain/foundation/blockchain/database"
	"github.com/ardanlabs/protochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/protochain/foundation/blockchain/state"
	"github.com/ardanlabs/protochain/foundation/blockchain/wallet"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// Private keys for the accounts used by the tests.
const (
	aliceKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	bobKey   = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

// easyGenesis keeps the difficulty at zero so any hash solves a block.
var easyGenesis = genesis.Genesis{
	Data:          "Genesis Block",
	TxPerBlock:    2,
	MinDifficulty: 0,
	MaxDifficulty: 62,
	FeePerTx:      1,
}

func mustWallet(t *testing.T, key string) wallet.Wallet {
	t.Helper()

	w, err := wallet.FromPrivateKey(key)
	if err != nil {
		t.Fatalf("Should be able to construct a wallet: %s", err)
	}

	return w
}

func signedTx(t *testing.T, from wallet.Wallet, to string, amount uint64, previousTx string) database.Tx {
	t.Helper()

	txi := database.TxInput{
		FromAddress: from.PublicKey,
		Amount:      amount,
		PreviousTx:  previousTx,
	}
	if err := txi.Sign(from.PrivateKey()); err != nil {
		t.Fatalf("Should be able to sign the input: %s", err)
	}

	return database.NewRegularTx(to, txi)
}

func mined(t *testing.T, block database.Block, difficulty int) database.Block {
	t.Helper()

	if err := block.Mine(context.Background(), difficulty, "miner"); err != nil {
		t.Fatalf("Should be able to mine the block: %s", err)
	}

	return block
}

type fakeWorker struct {
	start  int
	cancel int
}

func (w *fakeWorker) Shutdown()           {}
func (w *fakeWorker) SignalStartMining()  { w.start++ }
func (w *fakeWorker) SignalCancelMining() { w.cancel++ }

// =============================================================================

func Test_New(t *testing.T) {
	st := state.New(state.Config{Genesis: easyGenesis})

	t.Log("Given the need to start a new blockchain.")
	{
		if n := st.QueryBlocksLength(); n != 1 {
			t.Fatalf("\t%s\tShould have exactly one block: got %d", failed, n)
		}
		t.Logf("\t%s\tShould have exactly one block.", success)

		genesisBlock := st.LatestBlock()
		if genesisBlock.Index != 0 || genesisBlock.PreviousHash != "" {
			t.Fatalf("\t%s\tShould start with the genesis block: %+v", failed, genesisBlock)
		}
		if genesisBlock.Hash != genesisBlock.CalcHash() {
			t.Fatalf("\t%s\tShould have a hashed genesis block.", failed)
		}
		if len(genesisBlock.Transactions) != 1 || genesisBlock.Transactions[0].To != "Genesis Block" {
			t.Fatalf("\t%s\tShould carry the placeholder transaction: %+v", failed, genesisBlock.Transactions)
		}
		t.Logf("\t%s\tShould start with the genesis block.", success)

		if v := st.IsValid(); !v.Success {
			t.Fatalf("\t%s\tShould be a valid chain: %s", failed, v.Message)
		}
		t.Logf("\t%s\tShould be a valid chain.", success)

		if info := st.NextBlock(); info != nil {
			t.Fatalf("\t%s\tShould not have a next block with an empty mempool: %+v", failed, info)
		}
		t.Logf("\t%s\tShould not have a next block with an empty mempool.", success)

		loc := st.QueryTransaction("0xnothing")
		if loc.MempoolIndex != -1 || loc.BlockIndex != -1 {
			t.Fatalf("\t%s\tShould not find an unknown transaction: %+v", failed, loc)
		}
		t.Logf("\t%s\tShould not find an unknown transaction.", success)
	}
}

func Test_NewDefaults(t *testing.T) {
	t.Log("Given the need to start a blockchain without a genesis file.")
	{
		st := state.New(state.Config{})

		gen := st.RetrieveGenesis()
		if gen.TxPerBlock != genesis.Default().TxPerBlock || gen.Data != genesis.Default().Data {
			t.Fatalf("\t%s\tShould fill in the values the chain can't run without: %+v", failed, gen)
		}
		t.Logf("\t%s\tShould fill in the values the chain can't run without.", success)
	}

	t.Log("Given the need to keep explicit zero values of the genesis.")
	{
		g := genesis.Default()
		g.MinDifficulty = 0
		g.DifficultyFactor = 0
		g.FeePerTx = 0

		st := state.New(state.Config{Genesis: g})

		if d := st.Difficulty(); d != 0 {
			t.Fatalf("\t%s\tShould keep a zero difficulty: got %d", failed, d)
		}
		t.Logf("\t%s\tShould keep a zero difficulty.", success)

		if fee := st.FeePerTx(); fee != 0 {
			t.Fatalf("\t%s\tShould keep a zero fee: got %d", failed, fee)
		}
		t.Logf("\t%s\tShould keep a zero fee.", success)
	}
}

func Test_AddBlock(t *testing.T) {
	alice := mustWallet(t, aliceKey)
	bob := mustWallet(t, bobKey)

	type table struct {
		name  string
		block func(prev database.Block) database.Block
		msg   string
	}

	tt := []table{
		{
			name: "index",
			block: func(prev database.Block) database.Block {
				return mined(t, database.NewBlock(-1, prev.Hash, []database.Tx{signedTx(t, alice, bob.PublicKey, 10, "abc")}), 0)
			},
			msg: "Invalid block: Invalid index",
		},
		{
			name: "gap",
			block: func(prev database.Block) database.Block {
				return mined(t, database.NewBlock(2, prev.Hash, []database.Tx{signedTx(t, alice, bob.PublicKey, 11, "abc")}), 0)
			},
			msg: "Invalid block: Invalid index",
		},
		{
			name: "previous",
			block: func(prev database.Block) database.Block {
				return mined(t, database.NewBlock(1, "0xbad", []database.Tx{signedTx(t, alice, bob.PublicKey, 12, "abc")}), 0)
			},
			msg: "Invalid block: Invalid previous hash.",
		},
		{
			name: "unmined",
			block: func(prev database.Block) database.Block {
				return database.NewBlock(1, prev.Hash, []database.Tx{signedTx(t, alice, bob.PublicKey, 13, "abc")})
			},
			msg: "Invalid block: No mined.",
		},
		{
			name: "tx",
			block: func(prev database.Block) database.Block {
				tx := signedTx(t, alice, bob.PublicKey, 14, "abc")
				tx.To = ""
				return mined(t, database.NewBlock(1, prev.Hash, []database.Tx{tx}), 0)
			},
			msg: "Invalid block: Invalid to",
		},
		{
			name: "fees",
			block: func(prev database.Block) database.Block {
				return mined(t, database.NewBlock(1, prev.Hash, []database.Tx{database.NewFeeTx("a"), database.NewFeeTx("b")}), 0)
			},
			msg: "Invalid block: Invalid transactions",
		},
	}

	t.Log("Given the need to reject blocks that can't follow the chain.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				st := state.New(state.Config{Genesis: easyGenesis})

				v := st.AddBlock(tst.block(st.LatestBlock()))
				if v.Success || v.Message != tst.msg {
					t.Fatalf("\t%s\tTest %d:\tShould get back %q: got %q", failed, testID, tst.msg, v.Message)
				}
				if n := st.QueryBlocksLength(); n != 1 {
					t.Fatalf("\t%s\tTest %d:\tShould not change the chain: got %d blocks", failed, testID, n)
				}
				t.Logf("\t%s\tTest %d:\tShould reject the block with %q.", success, testID, tst.msg)
			}

			t.Run(tst.name, f)
		}
	}

	t.Log("Given the need to add a block mined elsewhere.")
	{
		st := state.New(state.Config{Genesis: easyGenesis})
		w := fakeWorker{}
		st.Worker = &w

		tx := signedTx(t, alice, bob.PublicKey, 10, "Block 2")
		if v := st.AddTransaction(tx); !v.Success {
			t.Fatalf("\t%s\tShould accept the transaction: %s", failed, v.Message)
		}

		b1 := mined(t, database.NewBlock(1, st.LatestBlock().Hash, []database.Tx{tx}), 0)
		if v := st.AddBlock(b1); !v.Success {
			t.Fatalf("\t%s\tShould accept the block: %s", failed, v.Message)
		}
		t.Logf("\t%s\tShould accept the block.", success)

		if n := st.QueryBlocksLength(); n != 2 {
			t.Fatalf("\t%s\tShould have two blocks: got %d", failed, n)
		}
		if st.LatestBlock().Hash != b1.Hash {
			t.Fatalf("\t%s\tShould make the block the latest.", failed)
		}
		t.Logf("\t%s\tShould have two blocks.", success)

		if n := st.QueryMempoolLength(); n != 0 {
			t.Fatalf("\t%s\tShould remove the mined transaction from the mempool: got %d", failed, n)
		}
		t.Logf("\t%s\tShould remove the mined transaction from the mempool.", success)

		if w.cancel != 1 {
			t.Fatalf("\t%s\tShould cancel mining in progress: got %d", failed, w.cancel)
		}
		t.Logf("\t%s\tShould cancel mining in progress.", success)

		b2 := mined(t, database.NewBlock(2, b1.Hash, []database.Tx{tx}), 0)
		v := st.AddBlock(b2)
		if v.Success || v.Message != "Invalid block: Duplicated tx" {
			t.Fatalf("\t%s\tShould reject a block with a confirmed transaction: %q", failed, v.Message)
		}
		t.Logf("\t%s\tShould reject a block with a confirmed transaction.", success)

		if v := st.IsValid(); !v.Success {
			t.Fatalf("\t%s\tShould still be a valid chain: %s", failed, v.Message)
		}
		t.Logf("\t%s\tShould still be a valid chain.", success)
	}
}

func Test_AddTransaction(t *testing.T) {
	alice := mustWallet(t, aliceKey)
	bob := mustWallet(t, bobKey)

	t.Log("Given the need to accept transactions into the mempool.")
	{
		st := state.New(state.Config{Genesis: easyGenesis})
		w := fakeWorker{}
		st.Worker = &w

		tx1 := signedTx(t, alice, bob.PublicKey, 10, "abc")
		tx2 := signedTx(t, bob, alice.PublicKey, 5, "def")

		for _, tx := range []database.Tx{tx1, tx2} {
			if v := st.AddTransaction(tx); !v.Success {
				t.Fatalf("\t%s\tShould accept the transaction: %s", failed, v.Message)
			}
		}
		if w.start != 2 {
			t.Fatalf("\t%s\tShould signal mining for each transaction: got %d", failed, w.start)
		}
		t.Logf("\t%s\tShould accept the transactions.", success)

		if loc := st.QueryTransaction(tx2.Hash); loc.MempoolIndex != 1 || loc.BlockIndex != -1 {
			t.Fatalf("\t%s\tShould find the transaction in the mempool: %+v", failed, loc)
		}
		t.Logf("\t%s\tShould find the transaction in the mempool.", success)

		if v := st.AddTransaction(tx1); v.Success || v.Message != "Duplicated tx" {
			t.Fatalf("\t%s\tShould reject a transaction already in the mempool: %q", failed, v.Message)
		}
		t.Logf("\t%s\tShould reject a transaction already in the mempool.", success)

		bad := signedTx(t, alice, "", 10, "ghi")
		if v := st.AddTransaction(bad); v.Success || v.Message != "Invalid to" {
			t.Fatalf("\t%s\tShould report why the transaction is invalid: %q", failed, v.Message)
		}
		t.Logf("\t%s\tShould report why the transaction is invalid.", success)

		forged := signedTx(t, alice, bob.PublicKey, 10, "jkl")
		forged.Input.FromAddress = bob.PublicKey
		forged.Hash = forged.CalcHash()
		if v := st.AddTransaction(forged); v.Success || v.Message != "Invalid signature" {
			t.Fatalf("\t%s\tShould reject a transaction signed by someone else: %q", failed, v.Message)
		}
		t.Logf("\t%s\tShould reject a transaction signed by someone else.", success)

		if _, err := st.MineNewBlock(context.Background(), "miner"); err != nil {
			t.Fatalf("\t%s\tShould be able to mine the transactions: %s", failed, err)
		}

		if loc := st.QueryTransaction(tx2.Hash); loc.MempoolIndex != -1 || loc.BlockIndex != 2 {
			t.Fatalf("\t%s\tShould find the transaction in the chain: %+v", failed, loc)
		}
		t.Logf("\t%s\tShould find the transaction in the chain.", success)

		if v := st.AddTransaction(tx1); v.Success || v.Message != "Duplicated tx" {
			t.Fatalf("\t%s\tShould reject a transaction already confirmed: %q", failed, v.Message)
		}
		t.Logf("\t%s\tShould reject a transaction already confirmed.", success)

		if w.cancel != 0 {
			t.Fatalf("\t%s\tShould not cancel mining for a locally mined block.", failed)
		}
		t.Logf("\t%s\tShould not cancel mining for a locally mined block.", success)
	}
}

func Test_AddTransactionFee(t *testing.T) {
	alice := mustWallet(t, aliceKey)
	bob := mustWallet(t, bobKey)

	t.Log("Given the need to keep fee transactions out of the mempool.")
	{
		st := state.New(state.Config{Genesis: easyGenesis})

		for i := 0; i < 2; i++ {
			if v := st.AddTransaction(database.NewFeeTx(fmt.Sprintf("miner%d", i))); v.Success || v.Message != "Fee tx not allowed" {
				t.Fatalf("\t%s\tShould reject a fee transaction: %q", failed, v.Message)
			}
		}
		t.Logf("\t%s\tShould reject a fee transaction.", success)

		if n := st.QueryMempoolLength(); n != 0 {
			t.Fatalf("\t%s\tShould leave the mempool empty: got %d", failed, n)
		}
		t.Logf("\t%s\tShould leave the mempool empty.", success)

		if v := st.AddTransaction(signedTx(t, alice, bob.PublicKey, 1, "fee")); !v.Success {
			t.Fatalf("\t%s\tShould accept a regular transaction: %s", failed, v.Message)
		}

		if _, err := st.MineNewBlock(context.Background(), "miner"); err != nil {
			t.Fatalf("\t%s\tShould mine the regular transaction: %s", failed, err)
		}
		if n := st.QueryBlocksLength(); n != 2 {
			t.Fatalf("\t%s\tShould grow the chain: got %d blocks", failed, n)
		}
		t.Logf("\t%s\tShould mine the regular transaction.", success)
	}
}

func Test_ConcurrentAddTransaction(t *testing.T) {
	alice := mustWallet(t, aliceKey)
	bob := mustWallet(t, bobKey)

	t.Log("Given the need to admit a transaction submitted concurrently only once.")
	{
		st := state.New(state.Config{Genesis: easyGenesis})
		tx := signedTx(t, alice, bob.PublicKey, 10, "race")

		const goroutines = 20

		var wg sync.WaitGroup
		var mu sync.Mutex
		var accepted int

		wg.Add(goroutines)
		for i := 0; i < goroutines; i++ {
			go func() {
				defer wg.Done()
				if v := st.AddTransaction(tx); v.Success {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if accepted != 1 {
			t.Fatalf("\t%s\tShould accept the transaction exactly once: got %d", failed, accepted)
		}
		t.Logf("\t%s\tShould accept the transaction exactly once.", success)

		if n := st.QueryMempoolLength(); n != 1 {
			t.Fatalf("\t%s\tShould hold one transaction in the mempool: got %d", failed, n)
		}
		t.Logf("\t%s\tShould hold one transaction in the mempool.", success)
	}
}

func Test_ConcurrentAddBlock(t *testing.T) {
	alice := mustWallet(t, aliceKey)
	bob := mustWallet(t, bobKey)

	t.Log("Given the need to accept only one of the blocks competing for a height.")
	{
		st := state.New(state.Config{Genesis: easyGenesis})
		prev := st.LatestBlock()

		const competitors = 10

		blocks := make([]database.Block, competitors)
		for i := range blocks {
			tx := signedTx(t, alice, bob.PublicKey, uint64(i+1), "compete")
			blocks[i] = mined(t, database.NewBlock(1, prev.Hash, []database.Tx{tx}), 0)
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		var accepted int

		wg.Add(competitors)
		for _, b := range blocks {
			go func(b database.Block) {
				defer wg.Done()
				if v := st.AddBlock(b); v.Success {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}(b)
		}
		wg.Wait()

		if accepted != 1 {
			t.Fatalf("\t%s\tShould accept exactly one block: got %d", failed, accepted)
		}
		t.Logf("\t%s\tShould accept exactly one block.", success)

		if n := st.QueryBlocksLength(); n != 2 {
			t.Fatalf("\t%s\tShould grow the chain by one block: got %d", failed, n)
		}
		t.Logf("\t%s\tShould grow the chain by one block.", success)

		if v := st.IsValid(); !v.Success {
			t.Fatalf("\t%s\tShould be a valid chain: %s", failed, v.Message)
		}
		t.Logf("\t%s\tShould be a valid chain.", success)
	}
}

func Test_NextBlock(t *testing.T) {
	alice := mustWallet(t, aliceKey)
	bob := mustWallet(t, bobKey)

	t.Log("Given the need to hand out templates for mining.")
	{
		st := state.New(state.Config{Genesis: easyGenesis})

		txs := []database.Tx{
			signedTx(t, alice, bob.PublicKey, 1, "a"),
			signedTx(t, alice, bob.PublicKey, 2, "b"),
			signedTx(t, alice, bob.PublicKey, 3, "c"),
		}
		for _, tx := range txs {
			if v := st.AddTransaction(tx); !v.Success {
				t.Fatalf("\t%s\tShould accept the transaction: %s", failed, v.Message)
			}
		}

		info := st.NextBlock()
		if info == nil {
			t.Fatalf("\t%s\tShould get back a template.", failed)
		}
		t.Logf("\t%s\tShould get back a template.", success)

		if info.Index != 1 || info.PreviousHash != st.LatestBlock().Hash {
			t.Fatalf("\t%s\tShould follow the latest block: %d %s", failed, info.Index, info.PreviousHash)
		}
		t.Logf("\t%s\tShould follow the latest block.", success)

		if len(info.Transactions) != 2 || info.Transactions[0].Hash != txs[0].Hash || info.Transactions[1].Hash != txs[1].Hash {
			t.Fatalf("\t%s\tShould carry the first transactions of the mempool: %v", failed, info.Transactions)
		}
		t.Logf("\t%s\tShould carry the first transactions of the mempool.", success)

		if info.FeePerTx != 2 || info.Difficulty != 0 || info.MaxDifficulty != 62 {
			t.Fatalf("\t%s\tShould price the block: fee[%d] difficulty[%d] max[%d]", failed, info.FeePerTx, info.Difficulty, info.MaxDifficulty)
		}
		t.Logf("\t%s\tShould price the block.", success)

		pending := st.RetrievePendingTransactions()
		if len(pending) != 2 || len(st.RetrieveMempool()) != 3 {
			t.Fatalf("\t%s\tShould retrieve the pending transactions: %d", failed, len(pending))
		}
		t.Logf("\t%s\tShould retrieve the pending transactions.", success)

		block := mined(t, database.NewBlockFromInfo(*info), info.Difficulty)
		if v := st.AddBlock(block); !v.Success {
			t.Fatalf("\t%s\tShould accept a block built from the template: %s", failed, v.Message)
		}
		if st.QueryMempoolLength() != 1 {
			t.Fatalf("\t%s\tShould leave the rest in the mempool: %d", failed, st.QueryMempoolLength())
		}
		t.Logf("\t%s\tShould accept a block built from the template.", success)
	}
}

func Test_MineNewBlock(t *testing.T) {
	alice := mustWallet(t, aliceKey)
	bob := mustWallet(t, bobKey)

	g := easyGenesis
	g.MinDifficulty = 1

	t.Log("Given the need to mine new blocks.")
	{
		st := state.New(state.Config{Genesis: g})

		if _, err := st.MineNewBlock(context.Background(), "miner"); !errors.Is(err, state.ErrNoTransactions) {
			t.Fatalf("\t%s\tShould not mine an empty mempool: %v", failed, err)
		}
		t.Logf("\t%s\tShould not mine an empty mempool.", success)

		st.AddTransaction(signedTx(t, alice, bob.PublicKey, 1, "a"))
		st.AddTransaction(signedTx(t, alice, bob.PublicKey, 2, "b"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := st.MineNewBlock(ctx, "miner"); !errors.Is(err, context.Canceled) {
			t.Fatalf("\t%s\tShould stop mining when cancelled: %v", failed, err)
		}
		if st.QueryBlocksLength() != 1 || st.QueryMempoolLength() != 2 {
			t.Fatalf("\t%s\tShould leave the chain untouched when cancelled.", failed)
		}
		t.Logf("\t%s\tShould stop mining when cancelled.", success)

		fee := st.FeePerTx()

		block, err := st.MineNewBlock(context.Background(), "miner")
		if err != nil {
			t.Fatalf("\t%s\tShould mine the block: %s", failed, err)
		}
		t.Logf("\t%s\tShould mine the block.", success)

		if block.Hash[:3] != "0x0" || block.Miner != "miner" {
			t.Fatalf("\t%s\tShould solve the block at the chain difficulty: %s", failed, block.Hash)
		}
		t.Logf("\t%s\tShould solve the block at the chain difficulty.", success)

		feeTx, exists := block.FeeTx()
		if !exists || feeTx.To != "miner" || len(feeTx.Outputs) != 1 || feeTx.Outputs[0].Amount != fee*2 {
			t.Fatalf("\t%s\tShould pay the miner for each transaction: %+v", failed, feeTx)
		}
		t.Logf("\t%s\tShould pay the miner for each transaction.", success)

		if st.QueryBlocksLength() != 2 || st.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould add the block and drain the mempool.", failed)
		}
		t.Logf("\t%s\tShould add the block and drain the mempool.", success)

		_, proof, order, found := st.QueryTransactionProof(feeTx.Hash)
		if !found || len(proof) == 0 || len(proof) != len(order) {
			t.Fatalf("\t%s\tShould prove the transaction was mined.", failed)
		}
		t.Logf("\t%s\tShould prove the transaction was mined.", success)
	}
}

func Test_Difficulty(t *testing.T) {
	alice := mustWallet(t, aliceKey)
	bob := mustWallet(t, bobKey)

	g := easyGenesis
	g.MinDifficulty = 0
	g.MaxDifficulty = 2
	g.DifficultyFactor = 1

	exp := []int{0, 1, 2, 2}

	t.Log("Given the need to raise the difficulty as the chain grows.")
	{
		st := state.New(state.Config{Genesis: g})

		for i, want := range exp {
			if got := st.Difficulty(); got != want {
				t.Fatalf("\t%s\tShould require difficulty %d with %d blocks: got %d", failed, want, i+1, got)
			}
			t.Logf("\t%s\tShould require difficulty %d with %d blocks.", success, want, i+1)

			st.AddTransaction(signedTx(t, alice, bob.PublicKey, uint64(i+1), "diff"))
			if _, err := st.MineNewBlock(context.Background(), "miner"); err != nil {
				t.Fatalf("\t%s\tShould mine the block: %s", failed, err)
			}
		}

		if v := st.IsValid(); !v.Success {
			t.Fatalf("\t%s\tShould be a valid chain: %s", failed, v.Message)
		}
		t.Logf("\t%s\tShould be a valid chain.", success)
	}
}
