package assemblyengine

import (
	"log/slog"

	httpadapter "asamblea/contexts/governance/assembly-engine/adapters/http"
	"asamblea/contexts/governance/assembly-engine/adapters/memory"
	"asamblea/contexts/governance/assembly-engine/application/commands"
	"asamblea/contexts/governance/assembly-engine/application/queries"
	"asamblea/contexts/governance/assembly-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Assemblies ports.AssemblyRepository
	Attendance ports.AttendanceRepository
	Votings    ports.VotingRepository
	Votes      ports.VoteRepository
	Registry   ports.OwnershipRegistry
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	quorumUseCase := queries.QuorumUseCase{
		Assemblies: deps.Assemblies,
		Attendance: deps.Attendance,
		Registry:   deps.Registry,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	tallyUseCase := queries.TallyUseCase{
		Assemblies: deps.Assemblies,
		Votes:      deps.Votes,
		Registry:   deps.Registry,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	summaryUseCase := queries.SummaryUseCase{
		Assemblies: deps.Assemblies,
		Attendance: deps.Attendance,
		Votings:    deps.Votings,
		Quorum:     quorumUseCase,
	}
	attendanceUseCase := commands.AttendanceUseCase{
		Assemblies: deps.Assemblies,
		Attendance: deps.Attendance,
		Registry:   deps.Registry,
		Quorum:     quorumUseCase,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	votingUseCase := commands.VotingUseCase{
		Assemblies: deps.Assemblies,
		Votings:    deps.Votings,
		Votes:      deps.Votes,
		Attendance: deps.Attendance,
		Registry:   deps.Registry,
		Quorum:     quorumUseCase,
		Tally:      tallyUseCase,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	assemblyUseCase := commands.AssemblyUseCase{
		Assemblies: deps.Assemblies,
		Attendance: deps.Attendance,
		Votings:    deps.Votings,
		Sessions:   votingUseCase,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Assemblies: assemblyUseCase,
			Attendance: attendanceUseCase,
			Sessions:   votingUseCase,
			Quorum:     quorumUseCase,
			Tally:      tallyUseCase,
			Summaries:  summaryUseCase,
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Assemblies: store,
		Attendance: store,
		Votings:    store,
		Votes:      store,
		Registry:   store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
