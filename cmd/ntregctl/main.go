// Command ntregctl inspects Windows NT registry hive files.
package main

func main() {
	execute()
}
