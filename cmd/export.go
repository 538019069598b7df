package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chrisdamba/foodispatch/internal/cloudwriter"
	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/chrisdamba/foodispatch/internal/repositories/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
)

// DeliveryRecord is the flattened export row for a completed delivery.
type DeliveryRecord struct {
	OrderID     string  `json:"order_id" parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CustomerID  string  `json:"customer_id" parquet:"name=customer_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	PartnerID   string  `json:"partner_id" parquet:"name=partner_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ServiceType string  `json:"service_type" parquet:"name=service_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	PickupLat   float64 `json:"pickup_lat" parquet:"name=pickup_lat, type=DOUBLE"`
	PickupLng   float64 `json:"pickup_lng" parquet:"name=pickup_lng, type=DOUBLE"`
	DeliveryLat float64 `json:"delivery_lat" parquet:"name=delivery_lat, type=DOUBLE"`
	DeliveryLng float64 `json:"delivery_lng" parquet:"name=delivery_lng, type=DOUBLE"`
	Total       float64 `json:"total" parquet:"name=total, type=DOUBLE"`
	CreatedAt   string  `json:"created_at" parquet:"name=created_at, type=BYTE_ARRAY, convertedtype=UTF8"`
	UpdatedAt   string  `json:"updated_at" parquet:"name=updated_at, type=BYTE_ARRAY, convertedtype=UTF8"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export completed-delivery history as JSONL or Parquet, locally or to S3",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		if cfg.PostgresDSN == "" {
			return fmt.Errorf("export requires postgres_dsn to be configured")
		}

		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		ctx := context.Background()
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		orders, err := postgres.NewOrderRepository(pool).GetAll(ctx)
		if err != nil {
			return fmt.Errorf("load orders: %w", err)
		}

		records := make([]DeliveryRecord, 0, len(orders))
		for _, o := range orders {
			if o.Status != models.OrderCompleted {
				continue
			}
			records = append(records, deliveryRecord(o))
		}

		switch format {
		case "parquet":
			err = exportParquet(cfg, records, out)
		case "jsonl":
			err = exportJSONL(cfg, records, out)
		default:
			return fmt.Errorf("unknown export format %q (want jsonl or parquet)", format)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d completed deliveries to %s\n", len(records), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "jsonl", "Export format: jsonl or parquet")
	exportCmd.Flags().String("out", defaultExportName(), "Output object path")
	rootCmd.AddCommand(exportCmd)
}

func defaultExportName() string {
	return fmt.Sprintf("deliveries/%s", time.Now().Format("2006-01-02"))
}

func deliveryRecord(o models.Order) DeliveryRecord {
	return DeliveryRecord{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		PartnerID:   o.PartnerID,
		ServiceType: o.ServiceType,
		PickupLat:   o.PickupLocation.Lat,
		PickupLng:   o.PickupLocation.Lng,
		DeliveryLat: o.DeliveryLocation.Lat,
		DeliveryLng: o.DeliveryLocation.Lng,
		Total:       o.Price.Total,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   o.UpdatedAt.Format(time.RFC3339),
	}
}

func exportJSONL(cfg *models.Config, records []DeliveryRecord, out string) error {
	factory, err := writerFactory(cfg)
	if err != nil {
		return err
	}
	w, err := factory.NewWriter(cfg.CloudStorage.Bucket, out+".jsonl")
	if err != nil {
		return fmt.Errorf("open export writer: %w", err)
	}
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}
	return w.Close()
}

// exportParquet writes a local parquet file first; when cloud storage is
// configured the finished file is uploaded as a single object.
func exportParquet(cfg *models.Config, records []DeliveryRecord, out string) error {
	localPath := out + ".parquet"
	if cfg.CloudStorage.Provider == "s3" {
		tmp, err := os.CreateTemp("", "foodispatch-export-*.parquet")
		if err != nil {
			return err
		}
		tmp.Close()
		defer os.Remove(tmp.Name())
		if err := writeParquet(tmp.Name(), records); err != nil {
			return err
		}
		return uploadFile(cfg, tmp.Name(), localPath)
	}

	if dir := cfg.CloudStorage.Bucket; dir != "" {
		localPath = dir + "/" + localPath
	}
	return writeParquet(localPath, records)
}

func writeParquet(path string, records []DeliveryRecord) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(DeliveryRecord), 4)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	for _, rec := range records {
		if err := pw.Write(rec); err != nil {
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalise parquet file: %w", err)
	}
	return nil
}

func uploadFile(cfg *models.Config, localPath, objectPath string) error {
	factory, err := cloudwriter.NewS3WriterFactory(cfg.CloudStorage.Region)
	if err != nil {
		return err
	}
	w, err := factory.NewWriter(cfg.CloudStorage.Bucket, objectPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Close()
}

func writerFactory(cfg *models.Config) (cloudwriter.CloudWriterFactory, error) {
	if cfg.CloudStorage.Provider == "s3" {
		return cloudwriter.NewS3WriterFactory(cfg.CloudStorage.Region)
	}
	return &cloudwriter.LocalWriterFactory{BaseDir: "."}, nil
}
