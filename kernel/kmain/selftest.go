//go:build !qemutest

package kmain

func runSelfTests() {}
