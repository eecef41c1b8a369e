package context

import "testing"

func TestAnalyzeOnCompletionEqNarrowsToSingleUpdate(t *testing.T) {
	sub := buildMain(t, `txn OnCompletion
int UpdateApplication
==
bz other
int 1
return
other:
err
`)
	table := Analyze(sub, TxnTypeAnalysis)
	trueEdge := table.OutOn(sub.Entry, sub.Entry.Succs[1].Block)
	v := trueEdge.(bitsetValue)
	if v != singleton(uint(TxnTypeApplUpdateApplication)) {
		t.Errorf("OnCompletion==UpdateApplication true edge = %v, want singleton(ApplUpdateApplication)", v.members())
	}
}

func TestAnalyzeOnCompletionNeqExcludesOneVariant(t *testing.T) {
	sub := buildMain(t, `txn OnCompletion
int UpdateApplication
!=
bz other
int 1
return
other:
err
`)
	table := Analyze(sub, TxnTypeAnalysis)
	trueEdge := table.OutOn(sub.Entry, sub.Entry.Succs[1].Block).(bitsetValue)
	if trueEdge&singleton(uint(TxnTypeApplUpdateApplication)) != 0 {
		t.Errorf("OnCompletion!=UpdateApplication true edge still includes ApplUpdateApplication: %v", trueEdge.members())
	}
	want := without(applicationUniverse, TxnTypeApplUpdateApplication)
	if trueEdge != want {
		t.Errorf("OnCompletion!=UpdateApplication true edge = %v, want %v", trueEdge.members(), want.members())
	}
}

func TestAnalyzeBareApplicationIDSplitsCreationFromCall(t *testing.T) {
	sub := buildMain(t, `txn ApplicationID
bz create
int 1
return
create:
err
`)
	table := Analyze(sub, TxnTypeAnalysis)
	callEdge := table.OutOn(sub.Entry, sub.Entry.Succs[1].Block).(bitsetValue)
	createEdge := table.OutOn(sub.Entry, sub.Entry.Succs[0].Block).(bitsetValue)
	if createEdge != singleton(uint(TxnTypeApplCreation)) {
		t.Errorf("bare ApplicationID false edge = %v, want singleton(ApplCreation)", createEdge.members())
	}
	if callEdge&singleton(uint(TxnTypeApplCreation)) != 0 {
		t.Errorf("bare ApplicationID true edge still includes ApplCreation: %v", callEdge.members())
	}
}

func TestAnalyzeApplicationIDEqZeroMatchesBareSplit(t *testing.T) {
	sub := buildMain(t, `txn ApplicationID
int 0
==
bz call
int 1
return
call:
err
`)
	table := Analyze(sub, TxnTypeAnalysis)
	createEdge := table.OutOn(sub.Entry, sub.Entry.Succs[1].Block).(bitsetValue)
	if createEdge != singleton(uint(TxnTypeApplCreation)) {
		t.Errorf("ApplicationID==0 true edge = %v, want singleton(ApplCreation)", createEdge.members())
	}
}

func TestAnalyzeTypeEnumEqNarrowsWithinTypeEnumUniverse(t *testing.T) {
	sub := buildMain(t, `txn TypeEnum
int appl
==
bz other
int 1
return
other:
err
`)
	table := Analyze(sub, TxnTypeAnalysis)
	trueEdge := table.OutOn(sub.Entry, sub.Entry.Succs[1].Block).(bitsetValue)
	if trueEdge != singleton(uint(TxnTypeApplicationCall)) {
		t.Errorf("TypeEnum==appl true edge = %v, want singleton(ApplicationCall)", trueEdge.members())
	}
	falseEdge := table.OutOn(sub.Entry, sub.Entry.Succs[0].Block).(bitsetValue)
	if want := without(typeEnumUniverse, TxnTypeApplicationCall); falseEdge != want {
		t.Errorf("TypeEnum==appl false edge = %v, want %v", falseEdge.members(), want.members())
	}
}

func TestTxnTypeIncludesReportsMembership(t *testing.T) {
	v := TxnTypeIs(TxnTypeApplDeleteApplication)
	if !TxnTypeIncludes(v, TxnTypeApplDeleteApplication) {
		t.Error("TxnTypeIncludes = false, want true for the asserted member")
	}
	if TxnTypeIncludes(v, TxnTypeApplUpdateApplication) {
		t.Error("TxnTypeIncludes = true, want false for a type outside the singleton")
	}
}
