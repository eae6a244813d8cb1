package command

type Interface interface {
	Apply(cmd Command, source Source)
	Close()
}
